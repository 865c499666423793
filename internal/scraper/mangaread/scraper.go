package mangaread

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel/mangaread-scraper/backend/internal/models"
	"github.com/gabriel/mangaread-scraper/backend/internal/scraper"
)

const canonicalBaseURL = "https://www.mangaread.org/"

// Scraper parses mangaread.org markup, a Madara WordPress theme. Selectors
// target the theme's listing cards, summary blocks and reader view.
type Scraper struct {
	baseURL string
}

func NewScraper() *Scraper {
	return &Scraper{baseURL: canonicalBaseURL}
}

func (s *Scraper) Key() string {
	return "mangaread"
}

func (s *Scraper) Name() string {
	return "MangaRead"
}

// ParseCatalogPage extracts minimal title summaries from a genre listing
// page. A malformed card degrades to sentinel fields or is skipped; the rest
// of the page still parses.
func (s *Scraper) ParseCatalogPage(markup string, genreType string) []models.Title {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	titles := make([]models.Title, 0)
	doc.Find("div.page-item-detail, div.c-tabs-item__content").Each(func(_ int, card *goquery.Selection) {
		entry := models.Title{
			Title:              models.NotAvailable,
			GenreType:          genreType,
			Cover:              models.NotAvailable,
			URL:                models.NotAvailable,
			LatestChapterTitle: models.NotAvailable,
			LatestChapterURL:   models.NotAvailable,
			Chapters:           []models.Chapter{},
		}

		link := card.Find("h3.h5 a").First()
		if link.Length() == 0 {
			link = card.Find("a.read-title").First()
		}
		if link.Length() > 0 {
			entry.Title = strings.TrimSpace(link.Text())
			if href, ok := link.Attr("href"); ok {
				entry.URL = s.absoluteURL(href)
			}
		}

		if entry.URL == models.NotAvailable || entry.URL == "" {
			// Without a URL there is no stable identity; skip the card.
			return
		}
		entry.ID = scraper.TitleIDFromURL(entry.URL)

		cover := card.Find("div.img-in-ratio img").First()
		if cover.Length() == 0 {
			cover = card.Find("img").First()
		}
		if src := imageSource(cover); src != "" {
			entry.Cover = s.absoluteURL(src)
		}

		latest := card.Find("div.chapter-item span.chapter a").First()
		if latest.Length() == 0 {
			latest = card.Find("div.latest-chap a").First()
		}
		if latest.Length() > 0 {
			entry.LatestChapterTitle = strings.TrimSpace(latest.Text())
			if href, ok := latest.Attr("href"); ok {
				entry.LatestChapterURL = s.absoluteURL(href)
			}
		}

		titles = append(titles, entry)
	})

	return titles
}

// ParseTitleDetail extracts the full metadata block and chapter list from a
// title's own page.
func (s *Scraper) ParseTitleDetail(markup string) models.TitleDetail {
	detail := models.TitleDetail{
		Title:       models.NotAvailable,
		Cover:       models.NotAvailable,
		Description: models.NotAvailable,
		Status:      models.NotAvailable,
		Author:      models.NotAvailable,
		Artist:      models.NotAvailable,
		AltTitles:   []string{},
		Genres:      []string{},
		Chapters:    []models.Chapter{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return detail
	}

	heading := doc.Find("div.post-title h1").First()
	if heading.Length() == 0 {
		heading = doc.Find("h1.entry-title").First()
	}
	if text := strings.TrimSpace(heading.Text()); text != "" {
		detail.Title = text
	}

	if src := imageSource(doc.Find("div.summary_image img").First()); src != "" {
		detail.Cover = s.absoluteURL(src)
	}

	description := doc.Find("div.description-summary div.summary__content").First()
	if description.Length() > 0 {
		description.Find("div.hidden-content").Remove()
		if text := strings.TrimSpace(description.Text()); text != "" {
			detail.Description = text
		}
	}

	doc.Find("div.post-content_item").Each(func(_ int, item *goquery.Selection) {
		heading := strings.TrimSpace(item.Find("div.summary-heading").Text())
		content := item.Find("div.summary-content").First()
		if content.Length() == 0 {
			return
		}
		switch {
		case strings.Contains(heading, "Alternative"):
			detail.AltTitles = splitCommaList(content.Text())
		case strings.Contains(heading, "Status"):
			if text := strings.TrimSpace(content.Text()); text != "" {
				detail.Status = text
			}
		}
	})

	if text := strings.TrimSpace(doc.Find("div.author-content").First().Text()); text != "" {
		detail.Author = text
	}
	if text := strings.TrimSpace(doc.Find("div.artist-content").First().Text()); text != "" {
		detail.Artist = text
	}

	doc.Find("div.genres-content a").Each(func(_ int, genre *goquery.Selection) {
		if text := strings.TrimSpace(genre.Text()); text != "" {
			detail.Genres = append(detail.Genres, text)
		}
	})

	chapterList := doc.Find("ul.main.version-chap").First()
	if chapterList.Length() == 0 {
		chapterList = doc.Find("ul.version-chap").First()
	}
	chapterList.Find("li.wp-manga-chapter").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		if link.Length() == 0 {
			return
		}
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		chapterURL := s.absoluteURL(href)
		chapter := models.Chapter{
			ID:     scraper.ChapterIDFromURL(chapterURL),
			Title:  strings.TrimSpace(link.Text()),
			URL:    chapterURL,
			Date:   models.NotAvailable,
			Images: []string{},
		}
		if date := strings.TrimSpace(item.Find("span.chapter-release-date i").Text()); date != "" {
			chapter.Date = date
		}
		detail.Chapters = append(detail.Chapters, chapter)
	})

	return detail
}

// ParseChapterImages extracts the ordered page image URLs from a chapter's
// reading view. Query-string suffixes are stripped and relative or
// protocol-relative sources are normalized to absolute URLs.
func (s *Scraper) ParseChapterImages(markup string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	images := make([]string, 0)
	doc.Find("div.reading-content img").Each(func(_ int, img *goquery.Selection) {
		src := imageSource(img)
		if src == "" {
			return
		}
		cleaned := strings.TrimSpace(strings.SplitN(src, "?", 2)[0])
		if cleaned == "" {
			return
		}
		images = append(images, s.absoluteURL(cleaned))
	})

	return images
}

// imageSource prefers the lazy-load data-src attribute over src, which on
// Madara pages usually points at a loading placeholder.
func imageSource(img *goquery.Selection) string {
	if img == nil || img.Length() == 0 {
		return ""
	}
	if src, ok := img.Attr("data-src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
		return strings.TrimSpace(src)
	}
	return ""
}

func (s *Scraper) absoluteURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "//") {
		return "https:" + trimmed
	}
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return trimmed
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return base.ResolveReference(ref).String()
}

func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
