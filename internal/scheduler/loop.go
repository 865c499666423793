package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel/mangaread-scraper/backend/internal/history"
	"github.com/gabriel/mangaread-scraper/backend/internal/merge"
	"github.com/gabriel/mangaread-scraper/backend/internal/models"
	"github.com/gabriel/mangaread-scraper/backend/internal/notifications"
)

const timeLayout = "2006-01-02 15:04:05"

type orchestrator interface {
	ScrapeFavorites(ctx context.Context) ([]models.Title, error)
	ScrapeRecommendations(ctx context.Context) ([]models.Title, error)
}

type datasetStore interface {
	LoadTitlesMap() (map[string]models.Title, error)
	SaveTitles(titles []models.Title) error
}

type runRecorder interface {
	RecordRun(run history.Run) error
}

// Status is a snapshot of the loop state served to API clients.
type Status struct {
	Running bool   `json:"scraper_running"`
	Message string `json:"scraper_message"`
	LastRun string `json:"last_scrape_time"`
	NextRun string `json:"next_scrape_time"`
}

type Loop struct {
	orch     orchestrator
	store    datasetStore
	recorder runRecorder
	notifier notifications.Notifier
	interval time.Duration
	poll     time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}

	triggered atomic.Bool
	started   atomic.Bool

	mu     sync.Mutex
	status Status
}

type LoopConfig struct {
	Interval time.Duration
	// Poll is how often the idle wait checks for an immediate trigger.
	Poll time.Duration
}

func NewLoop(orch orchestrator, store datasetStore, recorder runRecorder, notifier notifications.Notifier, cfg LoopConfig, logger *slog.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = 8 * time.Hour
	}
	if cfg.Poll <= 0 {
		cfg.Poll = time.Second
	}
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Loop{
		orch:     orch,
		store:    store,
		recorder: recorder,
		notifier: notifier,
		interval: cfg.Interval,
		poll:     cfg.Poll,
		logger:   logger,
		stopCh:   make(chan struct{}),
		status: Status{
			Message: "Idle",
			LastRun: "Never",
			NextRun: "N/A",
		},
	}
}

func (l *Loop) Start(ctx context.Context) {
	l.started.Store(true)
	l.logger.Info("scrape loop started", "interval", l.interval.String())
	go func() {
		defer close(l.stopCh)
		for {
			if ctx.Err() != nil {
				l.logger.Info("scrape loop stopped")
				return
			}
			if err := l.RunOnce(ctx); err != nil {
				l.logger.Warn("scrape cycle failed", "error", err)
			}
			if !l.wait(ctx) {
				l.logger.Info("scrape loop stopped")
				return
			}
		}
	}()
}

// StopWait blocks until the loop goroutine exits or the timeout passes.
// A loop that was never started has nothing to wait for.
func (l *Loop) StopWait(timeout time.Duration) {
	if !l.started.Load() {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-l.stopCh:
	case <-time.After(timeout):
	}
}

// TriggerFavorites requests an immediate favorites scrape. The signal holds a
// single slot: repeat calls before the loop picks it up collapse into one run.
func (l *Loop) TriggerFavorites() {
	l.triggered.Store(true)
}

func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// RunOnce performs one scrape cycle. An armed immediate trigger limits the
// cycle to favorites; otherwise favorites and recommendations run back to
// back, with the dataset persisted after each phase.
func (l *Loop) RunOnce(ctx context.Context) error {
	if l.triggered.CompareAndSwap(true, false) {
		l.setRunning("Immediate favorites scrape in progress")
		err := l.runPhase(ctx, history.KindImmediateFavorites, l.orch.ScrapeFavorites)
		l.finishCycle()
		return err
	}

	l.setRunning("Scraping favorite titles")
	favErr := l.runPhase(ctx, history.KindFavorites, l.orch.ScrapeFavorites)

	l.setRunning("Scraping recommendations")
	recErr := l.runPhase(ctx, history.KindRecommendations, l.orch.ScrapeRecommendations)

	l.finishCycle()
	if favErr != nil {
		return favErr
	}
	return recErr
}

func (l *Loop) runPhase(ctx context.Context, kind string, scrape func(context.Context) ([]models.Title, error)) error {
	started := time.Now().UTC()
	results, err := scrape(ctx)
	if err != nil {
		l.record(history.Run{
			Kind:       kind,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Error:      err.Error(),
		})
		return fmt.Errorf("%s scrape: %w", kind, err)
	}

	existing, err := l.store.LoadTitlesMap()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	if kind != history.KindRecommendations {
		l.notifyNewChapters(ctx, existing, results)
	}

	merged := merge.Titles(existing, results)
	if err := l.store.SaveTitles(merged); err != nil {
		return fmt.Errorf("persist dataset: %w", err)
	}

	l.record(history.Run{
		Kind:          kind,
		StartedAt:     started,
		FinishedAt:    time.Now().UTC(),
		TitlesScraped: len(results),
	})
	return nil
}

func (l *Loop) notifyNewChapters(ctx context.Context, existing map[string]models.Title, fresh []models.Title) {
	for _, title := range fresh {
		previous, known := existing[title.ID]
		if !known {
			continue
		}
		if title.LatestChapterTitle == "" || title.LatestChapterTitle == models.NotAvailable {
			continue
		}
		if title.LatestChapterTitle == previous.LatestChapterTitle {
			continue
		}
		update := notifications.ChapterUpdate{
			TitleID:      title.ID,
			Title:        title.Title,
			ChapterTitle: title.LatestChapterTitle,
			ChapterURL:   title.LatestChapterURL,
		}
		if err := l.notifier.NotifyChapter(ctx, update); err != nil {
			l.logger.Warn("chapter notification failed", "titleId", title.ID, "error", err)
		}
	}
}

// wait idles until the next cycle is due, checking for an immediate trigger
// every poll tick. Returns false when the context is cancelled.
func (l *Loop) wait(ctx context.Context) bool {
	deadline := time.Now().Add(l.interval)
	for {
		if l.triggered.Load() {
			return true
		}
		if !time.Now().Before(deadline) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(l.poll):
		}
	}
}

func (l *Loop) setRunning(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status.Running = true
	l.status.Message = message
}

func (l *Loop) finishCycle() {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status.Running = false
	l.status.Message = "Idle"
	l.status.LastRun = now.Format(timeLayout)
	l.status.NextRun = now.Add(l.interval).Format(timeLayout)
}

func (l *Loop) record(run history.Run) {
	if l.recorder == nil {
		return
	}
	if err := l.recorder.RecordRun(run); err != nil {
		l.logger.Warn("record scrape run failed", "kind", run.Kind, "error", err)
	}
}
