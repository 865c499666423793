package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gabriel/mangaread-scraper/backend/internal/history"
	"github.com/gabriel/mangaread-scraper/backend/internal/models"
	"github.com/gabriel/mangaread-scraper/backend/internal/notifications"
)

type fakeOrchestrator struct {
	favorites       []models.Title
	recommendations []models.Title
	favoritesErr    error
	favoritesCalls  int
	recCalls        int
}

func (f *fakeOrchestrator) ScrapeFavorites(_ context.Context) ([]models.Title, error) {
	f.favoritesCalls++
	if f.favoritesErr != nil {
		return nil, f.favoritesErr
	}
	return f.favorites, nil
}

func (f *fakeOrchestrator) ScrapeRecommendations(_ context.Context) ([]models.Title, error) {
	f.recCalls++
	return f.recommendations, nil
}

type fakeDataset struct {
	existing map[string]models.Title
	saved    [][]models.Title
}

func (f *fakeDataset) LoadTitlesMap() (map[string]models.Title, error) {
	out := make(map[string]models.Title, len(f.existing))
	for id, title := range f.existing {
		out[id] = title.Clone()
	}
	return out, nil
}

func (f *fakeDataset) SaveTitles(titles []models.Title) error {
	f.saved = append(f.saved, titles)
	for _, title := range titles {
		if f.existing == nil {
			f.existing = make(map[string]models.Title)
		}
		f.existing[title.ID] = title.Clone()
	}
	return nil
}

type fakeRecorder struct {
	runs []history.Run
}

func (f *fakeRecorder) RecordRun(run history.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

type fakeChapterNotifier struct {
	updates []notifications.ChapterUpdate
}

func (f *fakeChapterNotifier) NotifyChapter(_ context.Context, update notifications.ChapterUpdate) error {
	f.updates = append(f.updates, update)
	return nil
}

func TestLoopRunOnce_FullCycle(t *testing.T) {
	orch := &fakeOrchestrator{
		favorites:       []models.Title{{ID: "alpha", Title: "Alpha", GenreType: models.GenreTypeFavorite}},
		recommendations: []models.Title{{ID: "beta", Title: "Beta", GenreType: "Action"}},
	}
	store := &fakeDataset{}
	recorder := &fakeRecorder{}

	loop := NewLoop(orch, store, recorder, nil, LoopConfig{Interval: time.Hour}, nil)
	if err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	if orch.favoritesCalls != 1 || orch.recCalls != 1 {
		t.Fatalf("expected one favorites and one recommendations call, got %d and %d", orch.favoritesCalls, orch.recCalls)
	}
	if len(store.saved) != 2 {
		t.Fatalf("expected dataset persisted after each phase, got %d saves", len(store.saved))
	}
	if len(recorder.runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(recorder.runs))
	}
	if recorder.runs[0].Kind != history.KindFavorites || recorder.runs[1].Kind != history.KindRecommendations {
		t.Fatalf("unexpected run kinds: %s, %s", recorder.runs[0].Kind, recorder.runs[1].Kind)
	}
	if _, ok := store.existing["beta"]; !ok {
		t.Fatalf("expected recommendation merged into dataset")
	}

	status := loop.Status()
	if status.Running {
		t.Fatalf("expected idle status after cycle")
	}
	if status.LastRun == "Never" || status.NextRun == "N/A" {
		t.Fatalf("expected run times updated, got %q / %q", status.LastRun, status.NextRun)
	}
}

func TestLoopRunOnce_ImmediateTriggerScrapesFavoritesOnly(t *testing.T) {
	orch := &fakeOrchestrator{
		favorites: []models.Title{{ID: "alpha", Title: "Alpha", GenreType: models.GenreTypeFavorite}},
	}
	store := &fakeDataset{}
	recorder := &fakeRecorder{}

	loop := NewLoop(orch, store, recorder, nil, LoopConfig{Interval: time.Hour}, nil)
	loop.TriggerFavorites()
	loop.TriggerFavorites()

	if err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	if orch.favoritesCalls != 1 {
		t.Fatalf("expected a single favorites scrape, got %d", orch.favoritesCalls)
	}
	if orch.recCalls != 0 {
		t.Fatalf("immediate cycle must skip recommendations, got %d calls", orch.recCalls)
	}
	if len(recorder.runs) != 1 || recorder.runs[0].Kind != history.KindImmediateFavorites {
		t.Fatalf("unexpected recorded runs: %+v", recorder.runs)
	}

	// The trigger slot is consumed; the next cycle is a full one.
	if err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if orch.recCalls != 1 {
		t.Fatalf("expected full cycle after trigger consumed, got %d recommendation calls", orch.recCalls)
	}
}

func TestLoopRunOnce_NotifiesChangedFavoriteChapters(t *testing.T) {
	orch := &fakeOrchestrator{
		favorites: []models.Title{
			{ID: "alpha", Title: "Alpha", GenreType: models.GenreTypeFavorite, LatestChapterTitle: "Chapter 11", LatestChapterURL: "https://example.org/manga/alpha/chapter-11/"},
			{ID: "gamma", Title: "Gamma", GenreType: models.GenreTypeFavorite, LatestChapterTitle: "Chapter 1"},
		},
	}
	store := &fakeDataset{existing: map[string]models.Title{
		"alpha": {ID: "alpha", Title: "Alpha", GenreType: models.GenreTypeFavorite, LatestChapterTitle: "Chapter 10"},
	}}
	notifier := &fakeChapterNotifier{}

	loop := NewLoop(orch, store, nil, notifier, LoopConfig{Interval: time.Hour}, nil)
	if err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	if len(notifier.updates) != 1 {
		t.Fatalf("expected one notification for the known title, got %d", len(notifier.updates))
	}
	if notifier.updates[0].TitleID != "alpha" || notifier.updates[0].ChapterTitle != "Chapter 11" {
		t.Fatalf("unexpected notification: %+v", notifier.updates[0])
	}
}

func TestLoopRunOnce_RecordsFailedPhase(t *testing.T) {
	orch := &fakeOrchestrator{
		favoritesErr:    fmt.Errorf("network down"),
		recommendations: []models.Title{{ID: "beta", Title: "Beta", GenreType: "Action"}},
	}
	store := &fakeDataset{}
	recorder := &fakeRecorder{}

	loop := NewLoop(orch, store, recorder, nil, LoopConfig{Interval: time.Hour}, nil)
	err := loop.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected error from failed favorites phase")
	}

	if orch.recCalls != 1 {
		t.Fatalf("recommendations should still run after a failed favorites phase, got %d calls", orch.recCalls)
	}
	if len(recorder.runs) != 2 {
		t.Fatalf("expected both phases recorded, got %d", len(recorder.runs))
	}
	if recorder.runs[0].Error == "" {
		t.Fatalf("expected failed run to carry an error")
	}
	if len(store.saved) != 1 {
		t.Fatalf("only the successful phase should persist, got %d saves", len(store.saved))
	}
}

func TestLoopWait_BreaksEarlyOnTrigger(t *testing.T) {
	loop := NewLoop(&fakeOrchestrator{}, &fakeDataset{}, nil, nil, LoopConfig{Interval: time.Hour, Poll: 5 * time.Millisecond}, nil)

	done := make(chan bool, 1)
	go func() {
		done <- loop.wait(context.Background())
	}()

	time.Sleep(15 * time.Millisecond)
	loop.TriggerFavorites()

	select {
	case proceeded := <-done:
		if !proceeded {
			t.Fatalf("wait should report the loop may proceed")
		}
	case <-time.After(time.Second):
		t.Fatalf("wait did not break on trigger")
	}
}

func TestLoopStopWait_NeverStartedReturnsImmediately(t *testing.T) {
	loop := NewLoop(&fakeOrchestrator{}, &fakeDataset{}, nil, nil, LoopConfig{Interval: time.Hour}, nil)

	start := time.Now()
	loop.StopWait(5 * time.Second)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("stop wait on idle loop blocked for %s", elapsed)
	}
}

func TestLoopStart_StopsOnContextCancel(t *testing.T) {
	orch := &fakeOrchestrator{}
	loop := NewLoop(orch, &fakeDataset{}, nil, nil, LoopConfig{Interval: time.Hour, Poll: 5 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	loop.StopWait(time.Second)
	if orch.favoritesCalls != 1 {
		t.Fatalf("expected exactly one initial cycle, got %d", orch.favoritesCalls)
	}
}
