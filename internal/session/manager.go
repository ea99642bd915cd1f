package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/donation-service/internal/auth"
	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/pkg/util"
)

// Manager drives the authentication state machine over the Store. Session
// mutations serialize per process: while one is in flight, the others are
// rejected with SESSION_BUSY.
type Manager struct {
	store      *Store
	directory  *Directory
	bcryptCost int
	minPass    int
	logger     *zap.Logger
}

// NewManager builds the manager.
func NewManager(store *Store, directory *Directory, bcryptCost, minPasswordLength int, logger *zap.Logger) *Manager {
	return &Manager{
		store:      store,
		directory:  directory,
		bcryptCost: bcryptCost,
		minPass:    minPasswordLength,
		logger:     logger,
	}
}

// Login authenticates and publishes a session for email+role. A registered
// email must present its password; an unknown email gets a fresh identity
// named after its local part.
func (m *Manager) Login(ctx context.Context, email, password, role string) (*domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, util.NewInvalidCredentials("email and password required")
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, util.NewValidationError(err.Error(), map[string]any{"role": role})
	}

	if err := m.store.BeginMutation(); err != nil {
		return nil, err
	}

	identity, err := m.resolveLogin(email, password, parsedRole)
	if err != nil {
		m.store.Abort()
		return nil, err
	}

	m.store.Publish(ctx, *identity)
	m.logger.Info("login", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))
	return identity, nil
}

func (m *Manager) resolveLogin(email, password string, role domain.Role) (*domain.Identity, error) {
	if account, ok := m.directory.Lookup(email, role); ok {
		if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
			return nil, util.NewInvalidCredentials("invalid credentials")
		}
		identity := account.Identity
		return &identity, nil
	}

	hash, err := auth.HashPassword(password, m.bcryptCost)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	identity := domain.Identity{
		ID:              uuid.NewString(),
		Name:            nameFromEmail(email),
		Email:           email,
		Role:            role,
		ProfileComplete: false,
	}
	if err := m.directory.Register(Account{Identity: identity, PasswordHash: hash}); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Signup creates a new unverified identity and publishes it as the current
// session.
func (m *Manager) Signup(ctx context.Context, name, email, password, role string) (*domain.Identity, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	missing := map[string]any{}
	if name == "" {
		missing["name"] = "required"
	}
	if email == "" {
		missing["email"] = "required"
	}
	if password == "" {
		missing["password"] = "required"
	}
	if len(missing) > 0 {
		return nil, util.NewValidationError("missing required fields", missing)
	}
	if len(password) < m.minPass {
		return nil, util.NewValidationError("password too short", map[string]any{"min_length": m.minPass})
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, util.NewValidationError(err.Error(), map[string]any{"role": role})
	}

	if err := m.store.BeginMutation(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, m.bcryptCost)
	if err != nil {
		m.store.Abort()
		return nil, util.NewInternalError(err)
	}
	identity := domain.Identity{
		ID:              uuid.NewString(),
		Name:            name,
		Email:           email,
		Role:            parsedRole,
		ProfileComplete: false,
	}
	if err := m.directory.Register(Account{Identity: identity, PasswordHash: hash}); err != nil {
		m.store.Abort()
		return nil, err
	}

	m.store.Publish(ctx, identity)
	m.logger.Info("signup", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))
	return &identity, nil
}

// Logout clears the current session. Idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// CurrentIdentity returns the live identity, or nil when anonymous. Never
// blocks.
func (m *Manager) CurrentIdentity() *domain.Identity {
	session := m.store.Current()
	if !session.Authenticated() {
		return nil
	}
	identity := *session.Identity
	return &identity
}

// Restore attempts to load a persisted session on startup.
func (m *Manager) Restore(ctx context.Context) {
	m.store.Restore(ctx)
}

func nameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
