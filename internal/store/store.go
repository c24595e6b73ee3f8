package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/certsentry/certsentry/internal/site"
)

const websitesFile = "websites.json"

var (
	// ErrDuplicateURL is returned by Add when the URL is already monitored
	// and no new related domains were supplied to merge.
	ErrDuplicateURL = errors.New("website already exists")
	// ErrNotFound is returned when no record carries the requested id.
	ErrNotFound = errors.New("website not found")
)

// Store persists the full collection of monitored sites as one JSON
// document. Every mutation loads the whole collection, mutates it in memory
// and rewrites the whole file; an internal mutex serializes those cycles.
// It is a single-process store: concurrent processes still race.
type Store struct {
	mu       sync.Mutex
	path     string
	seedPath string
	logger   *slog.Logger
}

// New creates a Store rooted at dataDir, creating the directory if needed.
// Failure to create the data directory is the one unrecoverable error here.
func New(dataDir, seedPath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &Store{
		path:     filepath.Join(dataDir, websitesFile),
		seedPath: seedPath,
		logger:   logger,
	}, nil
}

// Load returns the full collection. If the persisted document is missing,
// empty or unreadable, it falls back to a one-time seed import and persists
// that as the new baseline.
func (s *Store) Load() ([]site.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save persists the full collection, replacing whatever was stored before.
func (s *Store) Save(sites []site.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(sites)
}

// Add registers a new site. If the URL is already monitored the call fails
// with ErrDuplicateURL, unless related domains were supplied — those merge
// into the existing record (skipping duplicates) and no new record is made.
func (s *Store) Add(url, name string, relatedDomains []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sites, err := s.loadLocked()
	if err != nil {
		return err
	}

	for i := range sites {
		if sites[i].URL != url {
			continue
		}
		if len(relatedDomains) == 0 {
			return ErrDuplicateURL
		}
		sites[i].RelatedDomains = mergeDomains(sites[i].RelatedDomains, relatedDomains)
		return s.saveLocked(sites)
	}

	if name == "" {
		name = url
	}
	if relatedDomains == nil {
		relatedDomains = []string{}
	}
	sites = append(sites, site.Site{
		ID:             nextID(sites),
		URL:            url,
		Name:           name,
		Status:         site.StatusUnknown,
		ExpiryDate:     site.Unknown,
		DaysRemaining:  site.Days{},
		AddedDate:      time.Now().Format(site.DateFormat),
		RelatedDomains: relatedDomains,
	})
	return s.saveLocked(sites)
}

// Remove deletes the record with the given id. The collection is left
// untouched when the id is unknown.
func (s *Store) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sites, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i := range sites {
		if sites[i].ID == id {
			sites = append(sites[:i], sites[i+1:]...)
			return s.saveLocked(sites)
		}
	}
	return ErrNotFound
}

// Get returns the record with the given id.
func (s *Store) Get(id int) (site.Site, error) {
	sites, err := s.Load()
	if err != nil {
		return site.Site{}, err
	}
	for _, w := range sites {
		if w.ID == id {
			return w, nil
		}
	}
	return site.Site{}, ErrNotFound
}

// Update replaces the record with the given id, preserving its id.
func (s *Store) Update(id int, updated site.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sites, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i := range sites {
		if sites[i].ID == id {
			updated.ID = id
			sites[i] = updated
			return s.saveLocked(sites)
		}
	}
	return ErrNotFound
}

// Errored returns the sites whose last probe did not yield a usable
// certificate status.
func (s *Store) Errored() ([]site.Site, error) {
	sites, err := s.Load()
	if err != nil {
		return nil, err
	}
	var out []site.Site
	for _, w := range sites {
		switch w.Status {
		case site.StatusGood, site.StatusExpiring, site.StatusExpired:
		default:
			out = append(out, w)
		}
	}
	return out, nil
}

// Find returns the first record whose name or URL contains the query,
// case-insensitively.
func (s *Store) Find(query string) (site.Site, bool, error) {
	sites, err := s.Load()
	if err != nil {
		return site.Site{}, false, err
	}
	q := strings.ToLower(query)
	for _, w := range sites {
		if strings.Contains(strings.ToLower(w.Name), q) ||
			strings.Contains(strings.ToLower(w.URL), q) {
			return w, true, nil
		}
	}
	return site.Site{}, false, nil
}

func (s *Store) loadLocked() ([]site.Site, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		var sites []site.Site
		if jsonErr := json.Unmarshal(data, &sites); jsonErr == nil && len(sites) > 0 {
			return sites, nil
		}
	}

	s.logger.Info("Loading websites from seed file", "seed", s.seedPath)
	seeded, err := s.loadSeed()
	if err != nil {
		s.logger.Warn("Seed import failed", "error", err)
		return []site.Site{}, nil
	}
	if len(seeded) == 0 {
		return []site.Site{}, nil
	}
	if err := s.saveLocked(seeded); err != nil {
		return nil, fmt.Errorf("failed to persist seed baseline: %w", err)
	}
	s.logger.Info("Initialized websites from seed file", "count", len(seeded))
	return seeded, nil
}

func (s *Store) saveLocked(sites []site.Site) error {
	data, err := json.MarshalIndent(sites, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode websites: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func nextID(sites []site.Site) int {
	max := 0
	for _, w := range sites {
		if w.ID > max {
			max = w.ID
		}
	}
	return max + 1
}

func mergeDomains(existing, incoming []string) []string {
	for _, d := range incoming {
		dup := false
		for _, e := range existing {
			if e == d {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, d)
		}
	}
	return existing
}
