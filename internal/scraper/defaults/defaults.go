// Package defaults wires the built-in scrapers into a registry from a list
// of enabled keys.
package defaults

import (
	"fmt"
	"strings"

	"github.com/gabriel/mangaread-scraper/backend/internal/scraper"
	"github.com/gabriel/mangaread-scraper/backend/internal/scraper/heuristic"
	"github.com/gabriel/mangaread-scraper/backend/internal/scraper/mangaread"
)

// NewRegistry registers the scrapers named by keys, in order, so the first
// key becomes the active scraper. Unknown keys are skipped and reported in
// the returned error; the registry is still usable alongside it.
func NewRegistry(keys []string) (*scraper.Registry, error) {
	registry := scraper.NewRegistry()

	var unknown []string
	for _, key := range keys {
		var s scraper.Scraper
		switch key {
		case "mangaread":
			s = mangaread.NewScraper()
		case "heuristic":
			s = heuristic.NewScraper()
		default:
			unknown = append(unknown, key)
			continue
		}
		if err := registry.Register(s); err != nil {
			return nil, fmt.Errorf("register scraper %s: %w", key, err)
		}
	}

	if len(unknown) > 0 {
		return registry, fmt.Errorf("unknown scraper keys: %s", strings.Join(unknown, ", "))
	}
	return registry, nil
}
