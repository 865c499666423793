package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel/mangaread-scraper/backend/internal/config"
	"github.com/gabriel/mangaread-scraper/backend/internal/fetcher"
	"github.com/gabriel/mangaread-scraper/backend/internal/history"
	apihttp "github.com/gabriel/mangaread-scraper/backend/internal/http"
	"github.com/gabriel/mangaread-scraper/backend/internal/notifications"
	"github.com/gabriel/mangaread-scraper/backend/internal/scheduler"
	"github.com/gabriel/mangaread-scraper/backend/internal/scrape"
	scraperdefaults "github.com/gabriel/mangaread-scraper/backend/internal/scraper/defaults"
	"github.com/gabriel/mangaread-scraper/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		slog.Error("failed to load scraping settings", "path", cfg.SettingsPath, "error", err)
		os.Exit(1)
	}

	dataset := store.New(cfg.DataPath, cfg.FavoritesPath, logger)
	if err := dataset.EnsureFiles(); err != nil {
		slog.Error("failed to prepare data files", "error", err)
		os.Exit(1)
	}

	runs, err := history.Open(cfg.HistoryPath)
	if err != nil {
		slog.Error("failed to open run history", "path", cfg.HistoryPath, "error", err)
		os.Exit(1)
	}
	defer runs.Close()

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
			GrabAllFavoriteChapters: settings.GrabAllFavoriteChapters,
			GenreURLs:               settings.GenreURLs,
			PolitenessDelay:         time.Duration(settings.PolitenessDelayMillis) * time.Millisecond,
		},
		logger,
	)

	var notifier notifications.Notifier = notifications.NoopNotifier{}
	if cfg.WebhookURL != "" {
		webhook, err := notifications.NewWebhookNotifier(cfg.WebhookURL)
		if err != nil {
			slog.Error("invalid webhook url", "error", err)
			os.Exit(1)
		}
		notifier = webhook
	}

	loop := scheduler.NewLoop(
		orchestrator,
		dataset,
		runs,
		notifier,
		scheduler.LoopConfig{
			Interval: time.Duration(settings.IntervalHours) * time.Hour,
		},
		logger,
	)

	loopCtx, loopCancel := context.WithCancel(context.Background())
	if cfg.ScraperEnabled {
		loop.Start(loopCtx)
	}

	app := apihttp.NewServer(cfg, apihttp.Deps{
		Loop:          loop,
		Runner:        orchestrator,
		History:       runs,
		Registry:      registry,
		DataPath:      dataset.DataPath(),
		FavoritesPath: dataset.FavoritesPath(),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	loopCancel()
	loop.StopWait(time.Duration(cfg.ShutdownSeconds) * time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
