package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type pinger interface {
	Ping() error
}

type HealthHandler struct {
	history pinger
}

func NewHealthHandler(history pinger) *HealthHandler {
	return &HealthHandler{history: history}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.history.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "degraded",
			"history": "down",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"history": "up",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
