package dashboard

import (
	"context"
	"time"

	"github.com/bobmcallan/filings-portal/internal/cache"
	"github.com/bobmcallan/filings-portal/internal/common"
	"github.com/google/uuid"
)

// Sessions hands out one Controller per page load. Idle sessions expire
// after ttl; the oldest are evicted beyond maxSessions.
type Sessions struct {
	store   *cache.Store[*Controller]
	backend Backend
	logger  *common.Logger
	opts    Options
}

// NewSessions creates a session registry.
func NewSessions(backend Backend, logger *common.Logger, opts Options, ttl time.Duration, maxSessions int) *Sessions {
	return &Sessions{
		store:   cache.New[*Controller](ttl, maxSessions),
		backend: backend,
		logger:  logger,
		opts:    opts,
	}
}

// Create registers a fresh controller and runs its initial fetches.
// The controller is returned even if ctx ends before the fetches settle.
func (s *Sessions) Create(ctx context.Context) (*Controller, error) {
	c := NewController(uuid.New().String(), s.backend, s.logger, s.opts)
	s.store.Set(c.ID(), c)

	s.logger.Debug().
		Str("session", c.ID()).
		Int("sessions", s.store.Len()).
		Msg("dashboard session created")

	return c, c.Start(ctx)
}

// Get returns the controller for id.
func (s *Sessions) Get(id string) (*Controller, bool) {
	return s.store.Get(id)
}

// Delete drops the controller for id.
func (s *Sessions) Delete(id string) {
	s.store.Delete(id)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.store.Len()
}

// Janitor sweeps expired sessions every interval until ctx ends.
func (s *Sessions) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("expired dashboard sessions swept")
			}
		}
	}
}
