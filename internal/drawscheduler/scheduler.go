// Package drawscheduler maps pool ids to future wall-clock draw instants.
//
// Timers are never persisted; the scheduler is rebuilt from stored draw
// instants at startup via RearmAll.
package drawscheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/streampot/streampot/internal/domain"
)

// Callback is invoked with the pool id when its draw instant arrives.
type Callback func(poolID string)

// Scheduler owns one timer per armed pool.
type Scheduler struct {
	logger   zerolog.Logger
	callback Callback

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New returns a scheduler firing the given callback.
func New(logger zerolog.Logger, callback Callback) *Scheduler {
	return &Scheduler{
		logger:   logger,
		callback: callback,
		timers:   make(map[string]*time.Timer),
	}
}

// Arm schedules the callback for the pool at the given instant.
//
// An overdue instant fires immediately. Re-arming replaces any existing
// timer so exactly one timer exists per pool.
func (s *Scheduler) Arm(poolID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[poolID]; ok {
		t.Stop()
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.logger.Info().Str("pool", poolID).Time("at", at).Dur("delay", delay).Msg("draw armed")

	s.timers[poolID] = time.AfterFunc(delay, func() {
		s.fire(poolID)
	})
}

func (s *Scheduler) fire(poolID string) {
	s.mu.Lock()
	delete(s.timers, poolID)
	s.mu.Unlock()

	s.logger.Info().Str("pool", poolID).Msg("draw timer fired")
	s.callback(poolID)
}

// Disarm stops and removes any timer for the pool.
func (s *Scheduler) Disarm(poolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[poolID]; ok {
		t.Stop()
		delete(s.timers, poolID)
	}
}

// RearmAll arms every given pool. Called once at startup with the loaded
// open and drawing pools; overdue pools fire immediately.
func (s *Scheduler) RearmAll(pools []domain.Pool) {
	for _, p := range pools {
		s.Arm(p.ID, p.DrawTime)
	}
}

// Armed reports whether the pool currently has a pending timer.
func (s *Scheduler) Armed(poolID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[poolID]

	return ok
}
