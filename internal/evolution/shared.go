package evolution

import (
	"sync"

	"evolog/internal/commits"
	"evolog/internal/ops"
)

// Shared guards one EvolutionLog with a single RWMutex so several
// goroutines can use it. Mutations take the write lock.
type Shared struct {
	mu  sync.RWMutex
	log *EvolutionLog
}

// NewShared wraps e. The caller must stop using e directly.
func NewShared(e *EvolutionLog) *Shared {
	return &Shared{log: e}
}

func (s *Shared) Append(op ops.Operation) ops.Sha {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Append(op)
}

func (s *Shared) Checkout(sha ops.Sha) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Checkout(sha)
}

func (s *Shared) CherryPick(sha ops.Sha) (ops.Sha, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.CherryPick(sha)
}

func (s *Shared) Cursor() ops.Sha {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Cursor()
}

func (s *Shared) Head() commits.Commit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Head()
}

func (s *Shared) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Len()
}

// View runs fn under the read lock. fn must not retain e or mutate it.
func (s *Shared) View(fn func(e *EvolutionLog)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.log)
}
