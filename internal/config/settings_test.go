package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.IntervalHours != 8 {
		t.Fatalf("expected default interval 8, got %d", settings.IntervalHours)
	}
	if len(settings.Scrapers) == 0 || settings.Scrapers[0] != "mangaread" {
		t.Fatalf("expected default scraper list, got %v", settings.Scrapers)
	}
}

func TestLoadSettings_ReadsFileAndClampsValues(t *testing.T) {
	content := `
scrapers:
  - heuristic
  - mangaread
interval_hours: 2
recommendations_per_genre: -1
max_chapters_per_manga: 3
grab_all_favorite_chapters: true
genre_urls:
  - https://example.org/genres/comedy/
`
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.IntervalHours != 2 {
		t.Fatalf("expected interval 2, got %d", settings.IntervalHours)
	}
	if settings.RecommendationsPerGenre != 5 {
		t.Fatalf("expected negative per-genre count clamped to 5, got %d", settings.RecommendationsPerGenre)
	}
	if settings.MaxChaptersPerManga != 3 {
		t.Fatalf("expected max chapters 3, got %d", settings.MaxChaptersPerManga)
	}
	if !settings.GrabAllFavoriteChapters {
		t.Fatalf("expected grab_all_favorite_chapters true")
	}
	if len(settings.Scrapers) != 2 || settings.Scrapers[0] != "heuristic" {
		t.Fatalf("expected scraper order preserved, got %v", settings.Scrapers)
	}
	if len(settings.GenreURLs) != 1 {
		t.Fatalf("expected one genre url, got %v", settings.GenreURLs)
	}
}

func TestLoadSettings_InvalidYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("scrapers: [unclosed"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
