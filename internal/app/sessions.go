package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sessions keeps one Controller per client session.
type Sessions struct {
	mu      sync.RWMutex
	items   map[string]*Controller
	factory func() *Controller
	ttl     time.Duration
	now     func() time.Time
}

func NewSessions(factory func() *Controller, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{
		items:   map[string]*Controller{},
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Sessions) Create() (string, *Controller) {
	id := uuid.NewString()
	c := s.factory()
	s.mu.Lock()
	s.items[id] = c
	s.mu.Unlock()
	return id, c
}

func (s *Sessions) Get(id string) (*Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	return c, ok
}

func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep drops sessions idle for longer than the TTL. Sessions with a submission
// in flight are kept. It returns the number removed.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, c := range s.items {
		if c.LastActive().Before(cutoff) && !c.Busy() {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				log.Info().Int("evicted", n).Int("active", s.Len()).Msg("idle sessions evicted")
			}
		}
	}
}
