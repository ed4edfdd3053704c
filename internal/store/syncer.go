package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/docelucro/backend-doce/internal/lock"
	"github.com/docelucro/backend-doce/internal/obs"
	"github.com/docelucro/backend-doce/internal/resilience"
	"github.com/docelucro/backend-doce/internal/state"
)

// SyncerConfig wires a Syncer.
type SyncerConfig struct {
	Remote   Remote
	UserID   string
	Debounce time.Duration
	Logger   zerolog.Logger
	// Locker, when set, serializes remote upserts across instances.
	Locker  *lock.Locker
	LockTTL time.Duration
	// Breaker, when set, skips upserts while the remote is failing.
	// The snapshot stays pending and the next mark retries.
	Breaker *resilience.Breaker
}

// Syncer coalesces document snapshots and pushes only the latest one
// to the remote after a quiet period. Bursts of mutations cost a
// single upsert.
type Syncer struct {
	cfg SyncerConfig

	mu      sync.Mutex
	pending *state.Document
	timer   *time.Timer
	closed  bool
}

func NewSyncer(cfg SyncerConfig) *Syncer {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	return &Syncer{cfg: cfg}
}

// Mark records the latest snapshot and (re)arms the debounce timer.
func (s *Syncer) Mark(doc *state.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = doc
	if s.timer == nil {
		s.timer = time.AfterFunc(s.cfg.Debounce, s.fire)
		return
	}
	s.timer.Reset(s.cfg.Debounce)
}

func (s *Syncer) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.cfg.Logger.Error().Err(err).Msg("remote sync failed")
	}
}

// Flush pushes the pending snapshot immediately, if any.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	doc := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	if doc == nil {
		return nil
	}

	if s.cfg.Breaker != nil && !s.cfg.Breaker.Allow() {
		s.requeue(doc)
		if obs.DocSyncTotal != nil {
			obs.DocSyncTotal.WithLabelValues("skipped").Inc()
		}
		return resilience.ErrOpenCircuit
	}

	save := func(ctx context.Context) error {
		return s.cfg.Remote.Save(ctx, s.cfg.UserID, doc)
	}
	var saveErr error
	if s.cfg.Locker != nil {
		saveErr = s.cfg.Locker.WithLock(ctx, "doc:sync:"+s.cfg.UserID, s.cfg.LockTTL, save)
	} else {
		saveErr = save(ctx)
	}
	if s.cfg.Breaker != nil {
		s.cfg.Breaker.Report(saveErr == nil)
	}
	if obs.DocSyncTotal != nil {
		if saveErr == nil {
			obs.DocSyncTotal.WithLabelValues("ok").Inc()
		} else {
			obs.DocSyncTotal.WithLabelValues("error").Inc()
		}
	}
	if saveErr != nil {
		s.requeue(doc)
	}
	return saveErr
}

// requeue puts a snapshot back as pending so a later mark or flush
// retries it, unless a newer snapshot arrived meanwhile.
func (s *Syncer) requeue(doc *state.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.pending != nil {
		return
	}
	s.pending = doc
	if s.timer != nil {
		s.timer.Reset(s.cfg.Debounce)
	}
}

// Close stops the timer and flushes whatever is still pending.
func (s *Syncer) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.Flush(ctx)
}
