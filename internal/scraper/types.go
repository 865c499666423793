package scraper

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/gabriel/mangaread-scraper/backend/internal/models"
)

// Scraper turns raw page markup into typed records. Implementations are pure
// over the markup: no network or file access, so a bad page degrades to
// sentinel values instead of failing a whole batch.
type Scraper interface {
	Key() string
	Name() string
	ParseCatalogPage(markup string, genreType string) []models.Title
	ParseTitleDetail(markup string) models.TitleDetail
	ParseChapterImages(markup string) []string
}

var chapterIDPattern = regexp.MustCompile(`chapter-(\d+(?:-\d+)?)/?$`)

// TitleIDFromURL derives the stable identity key for a title from the last
// path segment of its URL.
func TitleIDFromURL(rawURL string) string {
	clean := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if clean == "" {
		return ""
	}
	segments := strings.Split(clean, "/")
	id := segments[len(segments)-1]
	if id == "" {
		return hashedID("manga", rawURL)
	}
	return id
}

// ChapterIDFromURL extracts the numeric chapter marker from a chapter URL.
// Both "chapter-12" and the major-minor "chapter-12-5" form (chapter 12.5)
// are recognized. When neither matches, a stable FNV-1a hash of the URL
// string serves as a last-resort identity.
func ChapterIDFromURL(rawURL string) string {
	if match := chapterIDPattern.FindStringSubmatch(strings.TrimSpace(rawURL)); len(match) == 2 {
		return match[1]
	}
	return hashedID("u", rawURL)
}

func hashedID(prefix string, raw string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(raw))
	return fmt.Sprintf("%s%016x", prefix, h.Sum64())
}
