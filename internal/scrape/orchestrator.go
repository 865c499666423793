package scrape

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/gabriel/mangaread-scraper/backend/internal/merge"
	"github.com/gabriel/mangaread-scraper/backend/internal/models"
	"github.com/gabriel/mangaread-scraper/backend/internal/scraper"
)

// Fetcher retrieves raw page markup for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Store is the slice of the dataset store the orchestrator needs.
type Store interface {
	LoadTitles() ([]models.Title, error)
	LoadTitlesMap() (map[string]models.Title, error)
	SaveTitles(titles []models.Title) error
	LoadFavorites() ([]string, error)
}

type Options struct {
	// MaxChaptersPerTitle bounds how many of the earliest chapters get
	// image scraping per batch pass.
	MaxChaptersPerTitle int
	// RecommendationsPerGenre caps the random sample drawn per genre page.
	RecommendationsPerGenre int
	// GrabAllFavoriteChapters re-scrapes every chapter of a favorite.
	GrabAllFavoriteChapters bool
	// GenreURLs are the catalog listing pages mined for recommendations.
	GenreURLs []string
	// PolitenessDelay paces outbound fetches. Zero disables pacing (tests).
	PolitenessDelay time.Duration
}

// Orchestrator drives Fetcher -> Parser -> Merge for batches of title URLs.
// Fetches are deliberately serialized with a politeness delay; one failing
// title or chapter never aborts the rest of a batch.
type Orchestrator struct {
	fetcher  Fetcher
	registry *scraper.Registry
	store    Store
	opts     Options
	logger   *slog.Logger
}

func NewOrchestrator(fetcher Fetcher, registry *scraper.Registry, store Store, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.MaxChaptersPerTitle <= 0 {
		opts.MaxChaptersPerTitle = 1
	}
	if opts.RecommendationsPerGenre <= 0 {
		opts.RecommendationsPerGenre = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		fetcher:  fetcher,
		registry: registry,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// ScrapeTitles scrapes the detail page of every URL and returns one merged
// record per successfully processed URL. URLs whose detail fetch fails are
// absent from the result; the caller's existing map still has them, so no
// data is lost. genreTypes optionally tags a URL with the genre of the
// listing page it came from; the favorites list overrides it.
func (o *Orchestrator) ScrapeTitles(ctx context.Context, urls []string, existing map[string]models.Title, maxChapters int, grabAll bool, genreTypes map[string]string) []models.Title {
	active, ok := o.registry.Active()
	if !ok {
		o.logger.Warn("no scraper variants enabled")
		return nil
	}

	favorites, err := o.store.LoadFavorites()
	if err != nil {
		o.logger.Warn("load favorites failed", "error", err)
		favorites = nil
	}
	favoriteSet := make(map[string]struct{}, len(favorites))
	for _, url := range favorites {
		favoriteSet[url] = struct{}{}
	}

	results := make([]models.Title, 0, len(urls))
	for _, url := range urls {
		id := scraper.TitleIDFromURL(url)
		if id == "" {
			o.logger.Warn("skipping url without identity", "url", url)
			continue
		}

		o.pause()
		markup, err := o.fetcher.Fetch(ctx, url)
		if err != nil {
			o.logger.Warn("detail page fetch failed, skipping title", "url", url, "error", err)
			continue
		}

		detail := active.ParseTitleDetail(markup)
		entry := models.Title{
			ID:          id,
			URL:         url,
			Title:       detail.Title,
			Cover:       detail.Cover,
			Description: detail.Description,
			AltTitles:   detail.AltTitles,
			Status:      detail.Status,
			Author:      detail.Author,
			Artist:      detail.Artist,
			Genres:      detail.Genres,
		}

		if _, isFavorite := favoriteSet[url]; isFavorite {
			entry.GenreType = models.GenreTypeFavorite
		} else if tag, ok := genreTypes[url]; ok {
			entry.GenreType = tag
		}

		entry.Chapters = merge.Chapters(existing[id].Chapters, detail.Chapters)
		o.scrapeChapterImages(ctx, active, entry.Chapters, maxChapters, grabAll)
		merge.Finalize(&entry)

		results = append(results, entry)
	}
	return results
}

// scrapeChapterImages fetches reading pages for the chapters selected for
// image scraping and fills their image lists in place. A failed fetch
// leaves the chapter record as it is; the preserve-on-empty merge rule
// upstream keeps any previously stored images.
func (o *Orchestrator) scrapeChapterImages(ctx context.Context, active scraper.Scraper, chapters []models.Chapter, maxChapters int, grabAll bool) {
	selected := make([]int, 0, len(chapters))
	if grabAll {
		for i := range chapters {
			selected = append(selected, i)
		}
	} else {
		window := maxChapters
		if window > len(chapters) {
			window = len(chapters)
		}
		for i := 0; i < window; i++ {
			if len(chapters[i].Images) == 0 {
				selected = append(selected, i)
			}
		}
	}

	for _, i := range selected {
		chapter := &chapters[i]
		o.pause()
		markup, err := o.fetcher.Fetch(ctx, chapter.URL)
		if err != nil {
			o.logger.Warn("chapter page fetch failed", "chapterId", chapter.ID, "url", chapter.URL, "error", err)
			continue
		}
		images := active.ParseChapterImages(markup)
		if images == nil {
			images = []string{}
		}
		chapter.Images = images
	}
}

// ScrapeFavorites runs the batch path over the favorites list.
func (o *Orchestrator) ScrapeFavorites(ctx context.Context) ([]models.Title, error) {
	favorites, err := o.store.LoadFavorites()
	if err != nil {
		return nil, err
	}
	if len(favorites) == 0 {
		return nil, nil
	}

	existing, err := o.store.LoadTitlesMap()
	if err != nil {
		return nil, err
	}

	return o.ScrapeTitles(ctx, favorites, existing, o.opts.MaxChaptersPerTitle, o.opts.GrabAllFavoriteChapters, nil), nil
}

// ScrapeRecommendations mines the configured genre listing pages, samples a
// capped number of non-favorite titles at random, and scrapes them. The
// sample is not seeded; reruns pick different titles and that is fine for
// this use.
func (o *Orchestrator) ScrapeRecommendations(ctx context.Context) ([]models.Title, error) {
	active, ok := o.registry.Active()
	if !ok {
		return nil, nil
	}

	favorites, err := o.store.LoadFavorites()
	if err != nil {
		return nil, err
	}
	favoriteSet := make(map[string]struct{}, len(favorites))
	for _, url := range favorites {
		favoriteSet[url] = struct{}{}
	}

	summaries := make([]models.Title, 0)
	for _, genreURL := range o.opts.GenreURLs {
		o.pause()
		markup, err := o.fetcher.Fetch(ctx, genreURL)
		if err != nil {
			o.logger.Warn("genre page fetch failed", "url", genreURL, "error", err)
			continue
		}
		summaries = append(summaries, active.ParseCatalogPage(markup, genreTag(genreURL))...)
	}

	candidates := make([]models.Title, 0, len(summaries))
	for _, summary := range summaries {
		if _, isFavorite := favoriteSet[summary.URL]; isFavorite {
			continue
		}
		candidates = append(candidates, summary)
	}

	limit := o.opts.RecommendationsPerGenre * len(o.opts.GenreURLs)
	if len(candidates) > limit {
		rand.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		candidates = candidates[:limit]
	}

	urls := make([]string, 0, len(candidates))
	genreTypes := make(map[string]string, len(candidates))
	for _, candidate := range candidates {
		urls = append(urls, candidate.URL)
		genreTypes[candidate.URL] = candidate.GenreType
	}

	existing, err := o.store.LoadTitlesMap()
	if err != nil {
		return nil, err
	}

	return o.ScrapeTitles(ctx, urls, existing, o.opts.MaxChaptersPerTitle, false, genreTypes), nil
}

// ScrapeChapter re-fetches one chapter's reading page and replaces only that
// chapter's images, then persists. It updates, never creates: an unknown
// title or chapter id reports false and leaves the dataset untouched.
func (o *Orchestrator) ScrapeChapter(ctx context.Context, titleID string, chapterID string) bool {
	active, ok := o.registry.Active()
	if !ok {
		return false
	}

	titles, err := o.store.LoadTitles()
	if err != nil {
		o.logger.Warn("load dataset failed", "error", err)
		return false
	}

	titleIndex := -1
	chapterIndex := -1
	for i := range titles {
		if titles[i].ID != titleID {
			continue
		}
		titleIndex = i
		for j := range titles[i].Chapters {
			if titles[i].Chapters[j].ID == chapterID {
				chapterIndex = j
				break
			}
		}
		break
	}
	if titleIndex < 0 || chapterIndex < 0 {
		o.logger.Warn("chapter scrape for unknown id", "titleId", titleID, "chapterId", chapterID)
		return false
	}

	chapter := &titles[titleIndex].Chapters[chapterIndex]
	markup, err := o.fetcher.Fetch(ctx, chapter.URL)
	if err != nil {
		o.logger.Warn("chapter page fetch failed", "chapterId", chapterID, "error", err)
		return false
	}

	images := active.ParseChapterImages(markup)
	if images == nil {
		images = []string{}
	}
	chapter.Images = images

	if err := o.store.SaveTitles(titles); err != nil {
		o.logger.Warn("persist dataset failed", "error", err)
		return false
	}
	return true
}

// ScrapeTitleFull re-runs the batch path for one known title with every
// chapter selected for image scraping, then merges the result back into the
// full dataset. Unknown title ids report false without touching the file.
func (o *Orchestrator) ScrapeTitleFull(ctx context.Context, titleID string) bool {
	existing, err := o.store.LoadTitlesMap()
	if err != nil {
		o.logger.Warn("load dataset failed", "error", err)
		return false
	}

	entry, ok := existing[titleID]
	if !ok {
		o.logger.Warn("full title scrape for unknown id", "titleId", titleID)
		return false
	}

	updated := o.ScrapeTitles(ctx, []string{entry.URL}, map[string]models.Title{titleID: entry}, 0, true, nil)
	if len(updated) == 0 {
		return false
	}

	// Reload before merging: another scrape may have persisted meanwhile.
	full, err := o.store.LoadTitlesMap()
	if err != nil {
		o.logger.Warn("load dataset failed", "error", err)
		return false
	}
	if err := o.store.SaveTitles(merge.Titles(full, updated)); err != nil {
		o.logger.Warn("persist dataset failed", "error", err)
		return false
	}
	return true
}

func (o *Orchestrator) pause() {
	if o.opts.PolitenessDelay > 0 {
		time.Sleep(o.opts.PolitenessDelay)
	}
}

// genreTag takes the genre name out of a listing URL, e.g.
// ".../genres/manhwa/" -> "manhwa".
func genreTag(genreURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(genreURL), "/")
	segments := strings.Split(trimmed, "/")
	if len(segments) == 0 {
		return models.NotAvailable
	}
	tag := segments[len(segments)-1]
	if tag == "" {
		return models.NotAvailable
	}
	return tag
}
