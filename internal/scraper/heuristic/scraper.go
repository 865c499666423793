package heuristic

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel/mangaread-scraper/backend/internal/models"
)

// Scraper is the experimental best-effort variant. It knows nothing about a
// site's markup structure and falls back to broad heuristics: first heading
// as title, open-graph image as cover, longest paragraph as description.
// Catalog and chapter parsing return empty results until the heuristics grow
// to cover them.
type Scraper struct{}

func NewScraper() *Scraper {
	return &Scraper{}
}

func (s *Scraper) Key() string {
	return "heuristic"
}

func (s *Scraper) Name() string {
	return "Heuristic (Experimental)"
}

func (s *Scraper) ParseCatalogPage(_ string, _ string) []models.Title {
	return nil
}

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

	if text := strings.TrimSpace(doc.Find("h1").First().Text()); text != "" {
		detail.Title = text
	}

	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			detail.Cover = trimmed
		}
	}

	longest := ""
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); len(text) > len(longest) {
			longest = text
		}
	})
	if longest != "" {
		detail.Description = longest
	}

	return detail
}

func (s *Scraper) ParseChapterImages(_ string) []string {
	return nil
}
