// Command scrape-title runs a one-off full scrape of a single known title
// and prints the refreshed record. Useful for debugging parser changes
// without waiting for the scheduled loop.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gabriel/mangaread-scraper/backend/internal/config"
	"github.com/gabriel/mangaread-scraper/backend/internal/fetcher"
	"github.com/gabriel/mangaread-scraper/backend/internal/scrape"
	scraperdefaults "github.com/gabriel/mangaread-scraper/backend/internal/scraper/defaults"
	"github.com/gabriel/mangaread-scraper/backend/internal/store"
)

func main() {
	var titleID string
	var timeout time.Duration
	flag.StringVar(&titleID, "id", "", "title id to scrape (required)")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "overall scrape timeout")
	flag.Parse()

	if titleID == "" {
		fmt.Fprintln(os.Stderr, "usage: scrape-title -id <title-id> [-timeout 10m]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		slog.Error("failed to load scraping settings", "error", err)
		os.Exit(1)
	}

	dataset := store.New(cfg.DataPath, cfg.FavoritesPath, logger)
	if err := dataset.EnsureFiles(); err != nil {
		slog.Error("failed to prepare data files", "error", err)
		os.Exit(1)
	}

	registry, registryErr := scraperdefaults.NewRegistry(settings.Scrapers)
	if registryErr != nil {
		slog.Warn("scraper registry loaded with warnings", "error", registryErr)
	}

	orchestrator := scrape.NewOrchestrator(
		fetcher.New(logger),
		registry,
		dataset,
		scrape.Options{
			MaxChaptersPerTitle:     settings.MaxChaptersPerManga,
			RecommendationsPerGenre: settings.RecommendationsPerGenre,
			GenreURLs:               settings.GenreURLs,
			PolitenessDelay:         time.Duration(settings.PolitenessDelayMillis) * time.Millisecond,
		},
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if !orchestrator.ScrapeTitleFull(ctx, titleID) {
		slog.Error("title scrape failed", "titleId", titleID)
		os.Exit(1)
	}

	titles, err := dataset.LoadTitlesMap()
	if err != nil {
		slog.Error("reload dataset failed", "error", err)
		os.Exit(1)
	}
	refreshed, ok := titles[titleID]
	if !ok {
		slog.Error("title missing after scrape", "titleId", titleID)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(refreshed, "", "    ")
	if err != nil {
		slog.Error("encode title failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}
