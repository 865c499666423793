package scraper

import (
	"fmt"
	"sync"
)

// Registry holds the scraper variants in registration order. When several
// variants are enabled, Active returns the first one registered; the rest
// stay inert for the run.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	scrapers map[string]Scraper
}

type Descriptor struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func NewRegistry() *Registry {
	return &Registry{scrapers: map[string]Scraper{}}
}

func (r *Registry) Register(s Scraper) error {
	if s == nil {
		return fmt.Errorf("scraper is nil")
	}

	key := s.Key()
	if key == "" {
		return fmt.Errorf("scraper key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scrapers[key]; exists {
		return fmt.Errorf("scraper %q already registered", key)
	}

	r.scrapers[key] = s
	r.order = append(r.order, key)
	return nil
}

func (r *Registry) Get(key string) (Scraper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scrapers[key]
	return s, ok
}

// Active returns the scraper used for this run.
func (r *Registry) Active() (Scraper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, false
	}
	return r.scrapers[r.order[0]], true
}

func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Descriptor, 0, len(r.order))
	for _, key := range r.order {
		s := r.scrapers[key]
		items = append(items, Descriptor{Key: s.Key(), Name: s.Name()})
	}
	return items
}
