package fingerprint

import (
	"sync"

	"github.com/nao1215/a11yscan/internal/model"
)

// Store keeps the most recent fingerprint per normalized site URL for the
// lifetime of the process. Writes are last-write-wins.
type Store struct {
	mu      sync.Mutex
	entries map[string]model.ScanFingerprint
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]model.ScanFingerprint)}
}

// Swap stores fp for site and returns the fingerprint it replaced, or nil
// on the first scan of the site.
func (s *Store) Swap(site string, fp model.ScanFingerprint) *model.ScanFingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.entries[site]
	s.entries[site] = fp
	if !ok {
		return nil
	}
	return &prev
}

// Len returns the number of sites with a fingerprint.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
