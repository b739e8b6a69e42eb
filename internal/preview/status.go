package preview

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebase/internal/sitetree"
)

// StatusSnapshot is a point-in-time copy of the last verification.
type StatusSnapshot struct {
	At     time.Time
	Result sitetree.VerifyResult
	Err    error
	Runs   int
}

// Status tracks the outcome of the most recent verification.
type Status struct {
	mu   sync.RWMutex
	snap StatusSnapshot
}

func (s *Status) set(at time.Time, res sitetree.VerifyResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.At, s.snap.Result, s.snap.Err = at, res, err
	s.snap.Runs++
}

// Snapshot returns the current state.
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
