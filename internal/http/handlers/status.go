package handlers

import (
	"github.com/gabriel/mangaread-scraper/backend/internal/scheduler"
	"github.com/gofiber/fiber/v2"
)

type SchedulerControl interface {
	Status() scheduler.Status
	TriggerFavorites()
}

// StatusHandler exposes the scrape loop state and the manual trigger.
type StatusHandler struct {
	loop          SchedulerControl
	dataPath      string
	favoritesPath string
}

func NewStatusHandler(loop SchedulerControl, dataPath string, favoritesPath string) *StatusHandler {
	return &StatusHandler{loop: loop, dataPath: dataPath, favoritesPath: favoritesPath}
}

func (h *StatusHandler) Get(c *fiber.Ctx) error {
	status := h.loop.Status()
	return c.JSON(fiber.Map{
		"status":           "Server running",
		"scraper_running":  status.Running,
		"scraper_message":  status.Message,
		"last_scrape_time": status.LastRun,
		"next_scrape_time": status.NextRun,
		"data_file":        h.dataPath,
		"favorites_file":   h.favoritesPath,
	})
}

func (h *StatusHandler) TriggerFavoritesUpdate(c *fiber.Ctx) error {
	h.loop.TriggerFavorites()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Favorites update triggered",
	})
}

func (h *StatusHandler) DownloadData(c *fiber.Ctx) error {
	return c.Download(h.dataPath, "data.json")
}
