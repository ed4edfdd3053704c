// Package store owns the persisted document: a single in-process
// writer that saves locally on every mutation and mirrors the result
// to a remote row through a debounced syncer.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/docelucro/backend-doce/internal/lock"
	"github.com/docelucro/backend-doce/internal/resilience"
	"github.com/docelucro/backend-doce/internal/state"
)

// ErrRemoteNotFound signals that no remote row exists for the user yet.
var ErrRemoteNotFound = errors.New("store: remote document not found")

// Remote mirrors the document to a hosted backend, one row per user.
type Remote interface {
	Load(ctx context.Context, userID string) (*state.Document, error)
	Save(ctx context.Context, userID string, doc *state.Document) error
}

// Local persists the document on the machine running the service.
type Local interface {
	Load() (*state.Document, error)
	Save(doc *state.Document) error
}

// Config wires a Store.
type Config struct {
	Local  Local
	Remote Remote // optional
	UserID string
	Logger zerolog.Logger
	// Debounce is the quiet period before a remote upsert; zero
	// disables remote sync.
	Debounce time.Duration
	// Locker, when set, serializes remote upserts across instances.
	Locker *lock.Locker
	// Breaker, when set, backs off remote upserts while they fail.
	Breaker *resilience.Breaker
	Now     func() time.Time
}

// Store serializes all document access. Core computations stay pure;
// every mutation funnels through Update.
type Store struct {
	mu     sync.Mutex
	doc    *state.Document
	local  Local
	syncer *Syncer
	logger zerolog.Logger
	now    func() time.Time
}

// Open loads the document: local copy first, then the remote mirror,
// falling back to first-run defaults. The loaded document is migrated
// to the current schema and written back.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Local == nil {
		return nil, errors.New("store: local persistence is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Store{local: cfg.Local, logger: cfg.Logger, now: now}
	if cfg.Remote != nil && cfg.Debounce > 0 {
		s.syncer = NewSyncer(SyncerConfig{
			Remote:   cfg.Remote,
			UserID:   cfg.UserID,
			Debounce: cfg.Debounce,
			Logger:   cfg.Logger,
			Locker:   cfg.Locker,
			Breaker:  cfg.Breaker,
		})
	}

	doc, err := cfg.Local.Load()
	if err != nil {
		return nil, fmt.Errorf("store: load local document: %w", err)
	}
	if doc == nil && cfg.Remote != nil {
		doc, err = cfg.Remote.Load(ctx, cfg.UserID)
		if err != nil && !errors.Is(err, ErrRemoteNotFound) {
			cfg.Logger.Warn().Err(err).Msg("remote document load failed, starting fresh")
		}
	}
	if doc == nil {
		doc = state.DefaultDocument(now())
	}
	if state.Migrate(doc, now()) {
		cfg.Logger.Info().Int("schema_version", doc.SchemaVersion).Msg("document migrated")
	}
	s.doc = doc
	if err := cfg.Local.Save(doc); err != nil {
		return nil, fmt.Errorf("store: persist migrated document: %w", err)
	}
	return s, nil
}

// View calls fn with the current document. The callback must treat the
// document as read-only and must not retain it.
func (s *Store) View(fn func(doc *state.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Update applies fn to the document, persists locally, and schedules a
// remote sync. When fn errors the document is left untouched.
func (s *Store) Update(ctx context.Context, fn func(doc *state.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := clone(s.doc)
	if err != nil {
		return fmt.Errorf("store: snapshot document: %w", err)
	}
	if err := fn(draft); err != nil {
		return err
	}
	draft.UpdatedAt = s.now()
	if err := s.local.Save(draft); err != nil {
		return fmt.Errorf("store: persist document: %w", err)
	}
	s.doc = draft
	if s.syncer != nil {
		snapshot, err := clone(draft)
		if err != nil {
			return fmt.Errorf("store: snapshot for sync: %w", err)
		}
		s.syncer.Mark(snapshot)
	}
	return nil
}

// Snapshot returns an isolated deep copy of the current document.
func (s *Store) Snapshot() (*state.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.doc)
}

// Close flushes any pending remote sync.
func (s *Store) Close(ctx context.Context) error {
	if s.syncer == nil {
		return nil
	}
	return s.syncer.Close(ctx)
}

func clone(doc *state.Document) (*state.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := &state.Document{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
