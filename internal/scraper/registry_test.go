package scraper

import (
	"testing"

	"github.com/gabriel/mangaread-scraper/backend/internal/models"
)

type stubScraper struct {
	key string
}

func (s stubScraper) Key() string  { return s.key }
func (s stubScraper) Name() string { return s.key }
func (s stubScraper) ParseCatalogPage(string, string) []models.Title {
	return nil
}
func (s stubScraper) ParseTitleDetail(string) models.TitleDetail {
	return models.TitleDetail{}
}
func (s stubScraper) ParseChapterImages(string) []string { return nil }

func TestRegistryActiveIsFirstRegistered(t *testing.T) {
	registry := NewRegistry()
	if _, ok := registry.Active(); ok {
		t.Fatalf("empty registry should have no active scraper")
	}

	if err := registry.Register(stubScraper{key: "first"}); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := registry.Register(stubScraper{key: "second"}); err != nil {
		t.Fatalf("register second: %v", err)
	}

	active, ok := registry.Active()
	if !ok {
		t.Fatalf("expected an active scraper")
	}
	if active.Key() != "first" {
		t.Fatalf("expected first registered scraper to win, got %q", active.Key())
	}
}

func TestRegistryRejectsDuplicateKey(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubScraper{key: "dup"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(stubScraper{key: "dup"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestTitleIDFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.mangaread.org/manga/one-piece/", "one-piece"},
		{"https://www.mangaread.org/manga/one-piece", "one-piece"},
	}
	for _, tc := range cases {
		if got := TitleIDFromURL(tc.url); got != tc.want {
			t.Fatalf("TitleIDFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestChapterIDFromURL(t *testing.T) {
	if got := ChapterIDFromURL("https://www.mangaread.org/manga/x/chapter-12/"); got != "12" {
		t.Fatalf("expected numeric chapter id, got %q", got)
	}
	if got := ChapterIDFromURL("https://www.mangaread.org/manga/x/chapter-12-5"); got != "12-5" {
		t.Fatalf("expected major-minor chapter id, got %q", got)
	}

	fallback := ChapterIDFromURL("https://www.mangaread.org/manga/x/extras/")
	if fallback == "" {
		t.Fatalf("expected a fallback id")
	}
	again := ChapterIDFromURL("https://www.mangaread.org/manga/x/extras/")
	if fallback != again {
		t.Fatalf("fallback id must be stable across calls: %q vs %q", fallback, again)
	}
}
