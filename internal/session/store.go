package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/pkg/util"
)

// Store holds the at-most-one live session for the process and is its sole
// writer. All other components read the published value through Current.
type Store struct {
	mu      sync.RWMutex
	session domain.Session
	records RecordStore
	logger  *zap.Logger
}

// NewStore builds a store in the Anonymous state.
func NewStore(records RecordStore, logger *zap.Logger) *Store {
	return &Store{
		session: domain.Session{State: domain.SessionAnonymous},
		records: records,
		logger:  logger,
	}
}

// Current returns a snapshot of the live session. Never blocks on writers.
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// BeginMutation moves the store into Authenticating. While a mutation is in
// flight every other session-mutating call is rejected.
func (s *Store) BeginMutation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.State == domain.SessionAuthenticating {
		return util.NewSessionBusy()
	}
	s.session = domain.Session{State: domain.SessionAuthenticating, Identity: s.session.Identity}
	return nil
}

// Publish completes an in-flight mutation with a new identity, persisting the
// session record. A record write fault is logged but does not fail the login;
// the record is a restore cache, not the source of truth.
func (s *Store) Publish(ctx context.Context, identity domain.Identity) {
	if err := s.records.Write(ctx, identity); err != nil {
		s.logger.Warn("failed to persist session record", zap.Error(err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{State: domain.SessionAuthenticated, Identity: &identity}
}

// Abort resolves a failed mutation to Anonymous, never to a partial identity.
func (s *Store) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{State: domain.SessionAnonymous}
}

// Clear logs the session out. Idempotent: clearing an empty session is a
// no-op, not an error.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.session.State == domain.SessionAuthenticating {
		s.mu.Unlock()
		return util.NewSessionBusy()
	}
	s.session = domain.Session{State: domain.SessionAnonymous}
	s.mu.Unlock()

	if err := s.records.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear session record", zap.Error(err))
	}
	return nil
}

// Restore loads a previously persisted identity on startup. A missing or
// malformed record resolves to Anonymous.
func (s *Store) Restore(ctx context.Context) {
	identity, err := s.records.Read(ctx)
	if err != nil {
		s.logger.Warn("session restore failed, starting anonymous", zap.Error(err))
		return
	}
	if identity == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{State: domain.SessionAuthenticated, Identity: identity}
	s.logger.Info("session restored", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))
}
