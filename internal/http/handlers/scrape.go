package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ScrapeRunner interface {
	ScrapeChapter(ctx context.Context, titleID string, chapterID string) bool
	ScrapeTitleFull(ctx context.Context, titleID string) bool
}

// ScrapeHandler accepts on-demand scrape requests. Work happens in the
// background; the handlers only validate input and acknowledge.
type ScrapeHandler struct {
	runner  ScrapeRunner
	timeout time.Duration
	logger  *slog.Logger
}

func NewScrapeHandler(runner ScrapeRunner, logger *slog.Logger) *ScrapeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapeHandler{runner: runner, timeout: 10 * time.Minute, logger: logger}
}

type scrapeChapterRequest struct {
	MangaID   string `json:"mangaId"`
	ChapterID string `json:"chapterId"`
}

type scrapeMangaRequest struct {
	MangaID string `json:"mangaId"`
}

func (h *ScrapeHandler) ScrapeChapter(c *fiber.Ctx) error {
	var req scrapeChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	req.MangaID = strings.TrimSpace(req.MangaID)
	req.ChapterID = strings.TrimSpace(req.ChapterID)
	if req.MangaID == "" || req.ChapterID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing mangaId or chapterId"})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		if !h.runner.ScrapeChapter(ctx, req.MangaID, req.ChapterID) {
			h.logger.Warn("chapter scrape request failed", "titleId", req.MangaID, "chapterId", req.ChapterID)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":   "Chapter scrape started in background.",
		"mangaId":   req.MangaID,
		"chapterId": req.ChapterID,
	})
}

func (h *ScrapeHandler) ScrapeManga(c *fiber.Ctx) error {
	var req scrapeMangaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}
	req.MangaID = strings.TrimSpace(req.MangaID)
	if req.MangaID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing mangaId"})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		if !h.runner.ScrapeTitleFull(ctx, req.MangaID) {
			h.logger.Warn("full title scrape request failed", "titleId", req.MangaID)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Full manga scrape started in background.",
		"mangaId": req.MangaID,
	})
}
