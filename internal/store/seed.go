package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/certsentry/certsentry/internal/site"
)

// seedEntry is one line of the read-only seed document used on first run.
type seedEntry struct {
	URL            string   `json:"url"`
	Name           string   `json:"name,omitempty"`
	RelatedDomains []string `json:"related_domains,omitempty"`
}

func (s *Store) loadSeed() ([]site.Site, error) {
	data, err := os.ReadFile(s.seedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	today := time.Now().Format(site.DateFormat)
	sites := make([]site.Site, 0, len(entries))
	for i, e := range entries {
		if e.URL == "" {
			continue
		}
		name := e.Name
		if name == "" {
			name = e.URL
		}
		related := e.RelatedDomains
		if related == nil {
			related = []string{}
		}
		sites = append(sites, site.Site{
			ID:             i + 1,
			URL:            e.URL,
			Name:           name,
			Status:         site.StatusUnknown,
			ExpiryDate:     site.Unknown,
			DaysRemaining:  site.Days{},
			AddedDate:      today,
			RelatedDomains: related,
		})
	}
	return sites, nil
}
