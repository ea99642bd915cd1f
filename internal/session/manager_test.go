package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/pkg/util"
)

// memoryRecordStore is an in-memory RecordStore for tests.
type memoryRecordStore struct {
	mu       sync.Mutex
	identity *domain.Identity
	readErr  error
	writeErr error
}

func (m *memoryRecordStore) Read(_ context.Context) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.identity == nil {
		return nil, nil
	}
	copied := *m.identity
	return &copied, nil
}

func (m *memoryRecordStore) Write(_ context.Context, identity domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.identity = &identity
	return nil
}

func (m *memoryRecordStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = nil
	return nil
}

func newTestManager() (*Manager, *Store, *memoryRecordStore) {
	records := &memoryRecordStore{}
	store := NewStore(records, zap.NewNop())
	manager := NewManager(store, NewDirectory(), 4, 6, zap.NewNop())
	return manager, store, records
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an unverified identity with the requested role", func(t *testing.T) {
		manager, _, _ := newTestManager()
		identity, err := manager.Signup(ctx, "Jordan", "jordan@x.com", "secret1", "hospital")
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if identity.Role != domain.RoleHospital {
			t.Errorf("expected hospital role, got %s", identity.Role)
		}
		if identity.ProfileComplete {
			t.Error("new identities must start with an incomplete profile")
		}
		if current := manager.CurrentIdentity(); current == nil || current.ID != identity.ID {
			t.Error("signup did not publish the session")
		}
	})

	t.Run("short password leaves no session", func(t *testing.T) {
		manager, _, _ := newTestManager()
		_, err := manager.Signup(ctx, "Jo", "jo@x.com", "abc", "donor")
		if !util.HasCode(err, "VALIDATION_FAILED") {
			t.Fatalf("expected VALIDATION_FAILED, got %v", err)
		}
		if manager.CurrentIdentity() != nil {
			t.Error("failed signup must not create a session")
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		manager, _, _ := newTestManager()
		if _, err := manager.Signup(ctx, "", "jo@x.com", "secret1", "donor"); !util.HasCode(err, "VALIDATION_FAILED") {
			t.Errorf("expected VALIDATION_FAILED for missing name, got %v", err)
		}
		if _, err := manager.Signup(ctx, "Jo", "", "secret1", "donor"); !util.HasCode(err, "VALIDATION_FAILED") {
			t.Errorf("expected VALIDATION_FAILED for missing email, got %v", err)
		}
	})

	t.Run("unknown role fails closed", func(t *testing.T) {
		manager, _, _ := newTestManager()
		if _, err := manager.Signup(ctx, "Jo", "jo@x.com", "secret1", "patient"); !util.HasCode(err, "VALIDATION_FAILED") {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("duplicate email and role", func(t *testing.T) {
		manager, _, _ := newTestManager()
		if _, err := manager.Signup(ctx, "Jo", "jo@x.com", "secret1", "donor"); err != nil {
			t.Fatalf("first signup failed: %v", err)
		}
		if _, err := manager.Signup(ctx, "Jo Again", "jo@x.com", "secret2", "donor"); !util.HasCode(err, "DUPLICATE_ACCOUNT") {
			t.Errorf("expected DUPLICATE_ACCOUNT, got %v", err)
		}
		// Same email under another role is a distinct account.
		if _, err := manager.Signup(ctx, "Jo Clinic", "jo@x.com", "secret3", "hospital"); err != nil {
			t.Errorf("same email with different role should register: %v", err)
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("empty credentials", func(t *testing.T) {
		manager, _, _ := newTestManager()
		if _, err := manager.Login(ctx, "", "pw", "donor"); !util.HasCode(err, "INVALID_CREDENTIALS") {
			t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
		}
		if _, err := manager.Login(ctx, "jo@x.com", "", "donor"); !util.HasCode(err, "INVALID_CREDENTIALS") {
			t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
		}
		if manager.CurrentIdentity() != nil {
			t.Error("failed login must not create a session")
		}
	})

	t.Run("registered account requires the right password", func(t *testing.T) {
		manager, _, _ := newTestManager()
		registered, err := manager.Signup(ctx, "Jordan", "jordan@x.com", "secret1", "donor")
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		if err := manager.Logout(ctx); err != nil {
			t.Fatalf("logout failed: %v", err)
		}

		if _, err := manager.Login(ctx, "jordan@x.com", "wrong", "donor"); !util.HasCode(err, "INVALID_CREDENTIALS") {
			t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
		}
		identity, err := manager.Login(ctx, "jordan@x.com", "secret1", "donor")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if identity.ID != registered.ID {
			t.Error("login should return the registered identity")
		}
	})

	t.Run("unknown email derives a name from the local part", func(t *testing.T) {
		manager, _, _ := newTestManager()
		identity, err := manager.Login(ctx, "casey@x.com", "whatever", "donor")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if identity.Name != "casey" {
			t.Errorf("expected name casey, got %q", identity.Name)
		}
		if identity.ProfileComplete {
			t.Error("first-login identities must start with an incomplete profile")
		}
	})

	t.Run("rejected while another mutation is in flight", func(t *testing.T) {
		manager, store, _ := newTestManager()
		if err := store.BeginMutation(); err != nil {
			t.Fatalf("BeginMutation failed: %v", err)
		}
		if _, err := manager.Login(ctx, "jo@x.com", "secret1", "donor"); !util.HasCode(err, "SESSION_BUSY") {
			t.Errorf("expected SESSION_BUSY, got %v", err)
		}
		if err := manager.Logout(ctx); !util.HasCode(err, "SESSION_BUSY") {
			t.Errorf("expected SESSION_BUSY for logout, got %v", err)
		}
	})
}

func TestLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	manager, _, _ := newTestManager()
	if _, err := manager.Signup(ctx, "Jordan", "jordan@x.com", "secret1", "donor"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err := manager.Logout(ctx); err != nil {
		t.Fatalf("first logout failed: %v", err)
	}
	if manager.CurrentIdentity() != nil {
		t.Error("expected anonymous after logout")
	}
	if err := manager.Logout(ctx); err != nil {
		t.Errorf("second logout should be a no-op, got %v", err)
	}
	if manager.CurrentIdentity() != nil {
		t.Error("expected anonymous after second logout")
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip preserves every field", func(t *testing.T) {
		manager, _, records := newTestManager()
		identity, err := manager.Signup(ctx, "Jordan", "jordan@x.com", "secret1", "bloodbank")
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}

		// A fresh process sharing the record store picks the session up.
		restoredStore := NewStore(records, zap.NewNop())
		restored := NewManager(restoredStore, NewDirectory(), 4, 6, zap.NewNop())
		restored.Restore(ctx)

		current := restored.CurrentIdentity()
		if current == nil {
			t.Fatal("expected restored session")
		}
		if *current != *identity {
			t.Errorf("restored identity %+v differs from persisted %+v", *current, *identity)
		}
	})

	t.Run("absent record resolves to anonymous", func(t *testing.T) {
		manager, _, _ := newTestManager()
		manager.Restore(ctx)
		if manager.CurrentIdentity() != nil {
			t.Error("expected anonymous with no record")
		}
	})

	t.Run("storage failure resolves to anonymous", func(t *testing.T) {
		records := &memoryRecordStore{readErr: util.NewStorageFailure(errors.New("corrupt record"))}
		store := NewStore(records, zap.NewNop())
		manager := NewManager(store, NewDirectory(), 4, 6, zap.NewNop())
		manager.Restore(ctx)
		if manager.CurrentIdentity() != nil {
			t.Error("expected anonymous on storage failure")
		}
	})
}
