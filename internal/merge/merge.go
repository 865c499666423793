package merge

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/gabriel/mangaread-scraper/backend/internal/models"
)

var chapterNumberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// Titles combines freshly scraped records with the stored dataset. The
// result has exactly one record per id: incoming titles upsert over existing
// ones field by field, existing-only titles pass through untouched, and
// nothing is ever dropped. Output is sorted by id so the persisted file
// stays diffable.
func Titles(existing map[string]models.Title, incoming []models.Title) []models.Title {
	merged := make(map[string]models.Title, len(existing)+len(incoming))
	for id, title := range existing {
		merged[id] = title.Clone()
	}

	for _, fresh := range incoming {
		if fresh.ID == "" {
			continue
		}
		current, ok := merged[fresh.ID]
		if !ok {
			next := fresh.Clone()
			Finalize(&next)
			merged[fresh.ID] = next
			continue
		}
		merged[fresh.ID] = mergeTitle(current, fresh)
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.Title, 0, len(merged))
	for _, id := range ids {
		out = append(out, merged[id])
	}
	return out
}

// mergeTitle overlays incoming's non-empty fields onto the stored record.
// Chapters get their own per-id merge.
func mergeTitle(existing models.Title, incoming models.Title) models.Title {
	out := existing.Clone()

	if incoming.URL != "" {
		out.URL = incoming.URL
	}
	if hasValue(incoming.Title) {
		out.Title = incoming.Title
	}
	if hasValue(incoming.GenreType) {
		out.GenreType = incoming.GenreType
	}
	if hasValue(incoming.Cover) {
		out.Cover = incoming.Cover
	}
	if hasValue(incoming.Description) {
		out.Description = incoming.Description
	}
	if len(incoming.AltTitles) > 0 {
		out.AltTitles = append([]string(nil), incoming.AltTitles...)
	}
	if hasValue(incoming.Status) {
		out.Status = incoming.Status
	}
	if hasValue(incoming.Author) {
		out.Author = incoming.Author
	}
	if hasValue(incoming.Artist) {
		out.Artist = incoming.Artist
	}
	if len(incoming.Genres) > 0 {
		out.Genres = append([]string(nil), incoming.Genres...)
	}

	out.Chapters = Chapters(existing.Chapters, incoming.Chapters)
	Finalize(&out)
	return out
}

// Chapters merges two chapter lists by chapter id. Metadata comes from the
// incoming side when present; a previously fetched image list is never
// replaced by an empty one, which protects image data against partial or
// failed chapter-page fetches.
func Chapters(existing []models.Chapter, incoming []models.Chapter) []models.Chapter {
	byID := make(map[string]models.Chapter, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))

	for _, chapter := range existing {
		if _, seen := byID[chapter.ID]; !seen {
			order = append(order, chapter.ID)
		}
		byID[chapter.ID] = chapter.Clone()
	}

	for _, fresh := range incoming {
		current, ok := byID[fresh.ID]
		if !ok {
			byID[fresh.ID] = fresh.Clone()
			order = append(order, fresh.ID)
			continue
		}
		if fresh.Title != "" {
			current.Title = fresh.Title
		}
		if fresh.URL != "" {
			current.URL = fresh.URL
		}
		if fresh.Date != "" {
			current.Date = fresh.Date
		}
		if len(fresh.Images) > 0 {
			current.Images = append([]string(nil), fresh.Images...)
		}
		byID[fresh.ID] = current
	}

	out := make([]models.Chapter, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	SortChapters(out)
	return out
}

// SortChapters orders chapters ascending by the first numeric token of their
// title, so "Chapter 1.5" sorts between 1 and 2. A title without a numeric
// token sorts as 0. The sort is stable to keep equal-keyed chapters in their
// incoming order.
func SortChapters(chapters []models.Chapter) {
	sort.SliceStable(chapters, func(i, j int) bool {
		return ChapterNumber(chapters[i].Title) < ChapterNumber(chapters[j].Title)
	})
}

// hasValue reports whether a scraped string field carries real data. The
// "N/A" sentinel never overwrites a previously scraped value.
func hasValue(s string) bool {
	return s != "" && s != models.NotAvailable
}

// ChapterNumber parses the sort key out of a chapter title.
func ChapterNumber(title string) float64 {
	token := chapterNumberPattern.FindString(title)
	if token == "" {
		return 0
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return value
}

// Finalize re-sorts the chapter list and derives the latest-chapter pointer
// from the last chapter after sorting.
func Finalize(title *models.Title) {
	SortChapters(title.Chapters)
	if len(title.Chapters) == 0 {
		title.LatestChapterTitle = models.NotAvailable
		title.LatestChapterURL = models.NotAvailable
		return
	}
	last := title.Chapters[len(title.Chapters)-1]
	title.LatestChapterTitle = last.Title
	title.LatestChapterURL = last.URL
}
