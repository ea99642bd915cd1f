package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/internal/events"
	"github.com/spec-kit/donation-service/internal/session"
)

// SessionService wraps the session manager with session lifecycle events.
type SessionService struct {
	manager    *session.Manager
	dispatcher events.Dispatcher
}

// NewSessionService constructs the service.
func NewSessionService(manager *session.Manager, dispatcher events.Dispatcher) *SessionService {
	return &SessionService{manager: manager, dispatcher: dispatcher}
}

// Login authenticates and publishes the session.
func (s *SessionService) Login(ctx context.Context, email, password, role string) (*domain.Identity, error) {
	identity, err := s.manager.Login(ctx, email, password, role)
	if err != nil {
		return nil, err
	}
	s.publishSessionEvent(ctx, events.EventSessionStarted, identity)
	return identity, nil
}

// Signup registers a new identity and publishes the session.
func (s *SessionService) Signup(ctx context.Context, name, email, password, role string) (*domain.Identity, error) {
	identity, err := s.manager.Signup(ctx, name, email, password, role)
	if err != nil {
		return nil, err
	}
	s.publishSessionEvent(ctx, events.EventSessionStarted, identity)
	return identity, nil
}

// Logout clears the session. Idempotent.
func (s *SessionService) Logout(ctx context.Context) error {
	identity := s.manager.CurrentIdentity()
	if err := s.manager.Logout(ctx); err != nil {
		return err
	}
	if identity != nil {
		s.publishSessionEvent(ctx, events.EventSessionEnded, identity)
	}
	return nil
}

// CurrentIdentity returns the live identity, or nil when anonymous.
func (s *SessionService) CurrentIdentity() *domain.Identity {
	return s.manager.CurrentIdentity()
}

// Restore loads the persisted session on startup.
func (s *SessionService) Restore(ctx context.Context) {
	s.manager.Restore(ctx)
}

func (s *SessionService) publishSessionEvent(ctx context.Context, eventType events.EventType, identity *domain.Identity) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{ID: identity.ID, Role: identity.Role},
		Timestamp: time.Now(),
		Payload:   events.SessionPayload{UserID: identity.ID, Role: identity.Role},
	})
}
