package handlers

import (
	"github.com/gabriel/mangaread-scraper/backend/internal/scraper"
	"github.com/gofiber/fiber/v2"
)

type ScraperCatalog interface {
	List() []scraper.Descriptor
}

type ScrapersHandler struct {
	registry ScraperCatalog
}

func NewScrapersHandler(registry ScraperCatalog) *ScrapersHandler {
	return &ScrapersHandler{registry: registry}
}

func (h *ScrapersHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"items": h.registry.List()})
}
