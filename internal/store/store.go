package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gabriel/mangaread-scraper/backend/internal/models"
)

// Store owns the on-disk dataset: the scraped titles file and the favorites
// list. All reads and writes go through one lock so the background loop and
// API-triggered scrapes never interleave partial file states; saves replace
// the file atomically via a temp file rename.
type Store struct {
	mu            sync.RWMutex
	dataPath      string
	favoritesPath string
	logger        *slog.Logger
}

func New(dataPath string, favoritesPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dataPath:      dataPath,
		favoritesPath: favoritesPath,
		logger:        logger,
	}
}

func (s *Store) DataPath() string {
	return s.dataPath
}

func (s *Store) FavoritesPath() string {
	return s.favoritesPath
}

// EnsureFiles creates the data directory and an empty favorites file on
// first run. The dataset file itself appears with the first save.
func (s *Store) EnsureFiles() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range []string{s.dataPath, s.favoritesPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	if _, err := os.Stat(s.favoritesPath); os.IsNotExist(err) {
		if err := os.WriteFile(s.favoritesPath, []byte("[]"), 0o644); err != nil {
			return fmt.Errorf("create favorites file: %w", err)
		}
	}
	return nil
}

// LoadTitles reads the persisted dataset. A missing or corrupt file loads
// as an empty dataset so the next scrape can rebuild it.
func (s *Store) LoadTitles() ([]models.Title, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, err := os.ReadFile(s.dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Title{}, nil
		}
		return nil, fmt.Errorf("read dataset file: %w", err)
	}

	var titles []models.Title
	if err := json.Unmarshal(content, &titles); err != nil {
		s.logger.Warn("dataset file is corrupt, treating as empty", "path", s.dataPath, "error", err)
		return []models.Title{}, nil
	}
	return titles, nil
}

// LoadTitlesMap returns the dataset keyed by title id.
func (s *Store) LoadTitlesMap() (map[string]models.Title, error) {
	titles, err := s.LoadTitles()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Title, len(titles))
	for _, title := range titles {
		byID[title.ID] = title
	}
	return byID, nil
}

// SaveTitles replaces the dataset file with the given titles, indented for
// diffability. The write goes to a temp file in the same directory first so
// a concurrent load never observes a partial file.
func (s *Store) SaveTitles(titles []models.Title) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if titles == nil {
		titles = []models.Title{}
	}
	payload, err := json.MarshalIndent(titles, "", "    ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.dataPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.dataPath), filepath.Base(s.dataPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp dataset file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp dataset file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp dataset file: %w", err)
	}
	if err := os.Rename(tmpPath, s.dataPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace dataset file: %w", err)
	}
	return nil
}

// LoadFavorites reads the externally curated favorites list: a JSON array
// of title URLs. The scraper never writes it beyond the first-run empty
// file, so a corrupt list degrades to empty rather than failing a cycle.
func (s *Store) LoadFavorites() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, err := os.ReadFile(s.favoritesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read favorites file: %w", err)
	}

	var favorites []string
	if err := json.Unmarshal(content, &favorites); err != nil {
		s.logger.Warn("favorites file is corrupt, treating as empty", "path", s.favoritesPath, "error", err)
		return []string{}, nil
	}
	return favorites, nil
}
