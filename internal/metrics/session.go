// Package metrics implements the per-session measurement engine: the
// session state that guards against double measurement, the fetch-cycle
// collector, and the CSV report exporter.
package metrics

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mediabench/mediabench/pkg/types"
)

// Session owns the mutable state of one survey run: the set of URLs
// already measured, the accumulated records, and the one-shot export
// flag. Access is serialized so a session stays consistent even when
// the surrounding code runs measurements from multiple goroutines.
type Session struct {
	ID       string
	Provider string
	Location types.GeoLocation

	mu       sync.Mutex
	seen     map[string]struct{}
	records  []types.MetricRecord
	exported bool
}

// NewSession creates an empty session for the named provider.
func NewSession(provider string, loc types.GeoLocation) *Session {
	return &Session{
		ID:       uuid.New().String(),
		Provider: provider,
		Location: loc,
		seen:     make(map[string]struct{}),
	}
}

// MarkSeen records the URL in the dedup set. It returns false when the
// URL was already present, meaning the caller must not measure it again.
func (s *Session) MarkSeen(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Append adds a completed record to the session log.
func (s *Session) Append(r types.MetricRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

// Records returns a copy of the session log in arrival order.
func (s *Session) Records() []types.MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.MetricRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len reports the number of accumulated records.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// BeginExport atomically checks and sets the one-shot export flag. It
// returns true exactly once per session; every later call returns false.
func (s *Session) BeginExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exported {
		return false
	}
	s.exported = true
	return true
}

// Exported reports whether the session log has been exported.
func (s *Session) Exported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exported
}
