// Package memstore provides an in-memory implementation of scan.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/purnamedha/sirascan/internal/scan"
)

// Store holds scan results in memory for the process lifetime.
type Store struct {
	mu       sync.RWMutex
	results  map[string]*scan.Result // scan ID -> result
	latestID string                  // most recently completed scan
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{results: make(map[string]*scan.Result)}
}

// Get retrieves a scan result by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*scan.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// Latest retrieves the most recently completed scan result. Returns a copy.
func (s *Store) Latest(_ context.Context) (*scan.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latestID == "" {
		return nil, false, nil
	}
	cp := *s.results[s.latestID]
	return &cp, true, nil
}

// Put stores a copy of the scan result. A completed result becomes the
// latest; ULIDs sort by creation time, so a stale late writer cannot
// displace a newer completed scan.
func (s *Store) Put(_ context.Context, r *scan.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.results[r.ID] = &cp
	if r.Status == scan.StatusComplete && r.ID > s.latestID {
		s.latestID = r.ID
	}
	return nil
}
