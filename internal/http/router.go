package http

import (
	"github.com/gabriel/mangaread-scraper/backend/internal/config"
	"github.com/gabriel/mangaread-scraper/backend/internal/http/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps bundles everything the control surface serves from.
type Deps struct {
	Loop          handlers.SchedulerControl
	Runner        handlers.ScrapeRunner
	History       handlers.HistoryStore
	Registry      handlers.ScraperCatalog
	DataPath      string
	FavoritesPath string
}

func NewServer(cfg config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	status := handlers.NewStatusHandler(deps.Loop, deps.DataPath, deps.FavoritesPath)
	scrapes := handlers.NewScrapeHandler(deps.Runner, nil)
	runs := handlers.NewRunsHandler(deps.History)
	health := handlers.NewHealthHandler(deps.History)
	scrapers := handlers.NewScrapersHandler(deps.Registry)

	app.Get("/", status.Get)
	app.Get("/download_data", status.DownloadData)
	app.Post("/trigger_favorites_update", status.TriggerFavoritesUpdate)
	app.Get("/health", health.Check)

	api := app.Group("/api")
	api.Post("/scrape_chapter", scrapes.ScrapeChapter)
	api.Post("/scrape_manga", scrapes.ScrapeManga)
	api.Get("/runs", runs.List)
	api.Get("/scrapers", scrapers.List)

	return app
}
