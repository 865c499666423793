package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded scrape phase: when it ran, what it scraped and how it
// ended. The JSON dataset stays the source of truth for scraped content;
// runs exist only for reporting.
type Run struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	TitlesScraped int       `json:"titlesScraped"`
	Error         string    `json:"error,omitempty"`
}

const (
	KindFavorites          = "favorites"
	KindRecommendations    = "recommendations"
	KindImmediateFavorites = "immediate_favorites"
)

type Store struct {
	db *sql.DB
}

func Open(sqlitePath string) (*Store, error) {
	dir := filepath.Dir(sqlitePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite WAL: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		titles_scraped INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);
	`)
	if err != nil {
		return fmt.Errorf("create scrape_runs table: %w", err)
	}
	return nil
}

func (s *Store) RecordRun(run Run) error {
	_, err := s.db.Exec(
		`INSERT INTO scrape_runs (kind, started_at, finished_at, titles_scraped, error) VALUES (?, ?, ?, ?, ?)`,
		run.Kind,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
		run.TitlesScraped,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("record scrape run: %w", err)
	}
	return nil
}

func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, kind, started_at, finished_at, titles_scraped, error
		 FROM scrape_runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list scrape runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Kind, &run.StartedAt, &run.FinishedAt, &run.TitlesScraped, &run.Error); err != nil {
			return nil, fmt.Errorf("scan scrape run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scrape runs: %w", err)
	}
	return runs, nil
}
