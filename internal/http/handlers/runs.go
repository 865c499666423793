package handlers

import (
	"strconv"

	"github.com/gabriel/mangaread-scraper/backend/internal/history"
	"github.com/gofiber/fiber/v2"
)

// HistoryStore is the slice of the run history store the API needs.
type HistoryStore interface {
	RecentRuns(limit int) ([]history.Run, error)
	Ping() error
}

type RunsHandler struct {
	store HistoryStore
}

func NewRunsHandler(store HistoryStore) *RunsHandler {
	return &RunsHandler{store: store}
}

func (h *RunsHandler) List(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = parsed
	}

	runs, err := h.store.RecentRuns(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load scrape runs"})
	}
	return c.JSON(fiber.Map{"items": runs})
}
