package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings holds the scraping behavior tunables read from the YAML settings
// file. Unlike the env config these are meant to be edited between runs.
type Settings struct {
	// Scrapers lists enabled scraper keys in priority order. The first
	// entry is the active scraper for catalog and detail pages.
	Scrapers                []string `yaml:"scrapers"`
	IntervalHours           int      `yaml:"interval_hours"`
	RecommendationsPerGenre int      `yaml:"recommendations_per_genre"`
	MaxChaptersPerManga     int      `yaml:"max_chapters_per_manga"`
	GrabAllFavoriteChapters bool     `yaml:"grab_all_favorite_chapters"`
	PolitenessDelayMillis   int      `yaml:"politeness_delay_ms"`
	GenreURLs               []string `yaml:"genre_urls"`
}

func DefaultSettings() Settings {
	return Settings{
		Scrapers:                []string{"mangaread"},
		IntervalHours:           8,
		RecommendationsPerGenre: 5,
		MaxChaptersPerManga:     1,
		GrabAllFavoriteChapters: false,
		PolitenessDelayMillis:   500,
		GenreURLs: []string{
			"https://www.mangaread.org/genres/action/",
			"https://www.mangaread.org/genres/fantasy/",
		},
	}
}

// LoadSettings reads the settings file at path. A missing file is not an
// error; defaults apply. Fields left out of the file keep their defaults,
// and out-of-range values are clamped back to them.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	if err := yaml.Unmarshal(content, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings file %s: %w", path, err)
	}

	defaults := DefaultSettings()
	if len(settings.Scrapers) == 0 {
		settings.Scrapers = defaults.Scrapers
	}
	if settings.IntervalHours <= 0 {
		settings.IntervalHours = defaults.IntervalHours
	}
	if settings.RecommendationsPerGenre <= 0 {
		settings.RecommendationsPerGenre = defaults.RecommendationsPerGenre
	}
	if settings.MaxChaptersPerManga <= 0 {
		settings.MaxChaptersPerManga = defaults.MaxChaptersPerManga
	}
	if settings.PolitenessDelayMillis < 0 {
		settings.PolitenessDelayMillis = defaults.PolitenessDelayMillis
	}

	return settings, nil
}
