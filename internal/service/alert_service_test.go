package service

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/internal/events"
	"github.com/spec-kit/donation-service/internal/matching"
	"github.com/spec-kit/donation-service/internal/registry"
	"github.com/spec-kit/donation-service/internal/session"
	"github.com/spec-kit/donation-service/pkg/util"
)

// capturingDispatcher records published events.
type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *capturingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fixture struct {
	service    *AlertService
	directory  *session.Directory
	dispatcher *capturingDispatcher
	hospital   domain.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	directory := session.NewDirectory()
	alerts := registry.New()
	coordinator := matching.New(alerts, directory)
	dispatcher := &capturingDispatcher{}
	svc := NewAlertService(AlertDependencies{
		Registry:    alerts,
		Coordinator: coordinator,
		Directory:   directory,
		Dispatcher:  dispatcher,
	})
	return &fixture{
		service:    svc,
		directory:  directory,
		dispatcher: dispatcher,
		hospital:   domain.Identity{ID: "hosp-1", Name: "City General", Email: "ops@citygeneral.org", Role: domain.RoleHospital},
	}
}

func (f *fixture) addDonor(t *testing.T, id string, bloodType domain.BloodType, available bool) domain.Identity {
	t.Helper()
	identity := domain.Identity{
		ID:              id,
		Name:            id,
		Email:           id + "@example.com",
		Role:            domain.RoleDonor,
		ProfileComplete: true,
	}
	err := f.directory.Register(session.Account{
		Identity:              identity,
		PasswordHash:          "x",
		BloodType:             bloodType,
		AvailableForEmergency: available,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return identity
}

func criticalONegInput() CreateAlertInput {
	return CreateAlertInput{
		BloodType:      "O-",
		Urgency:        "CRITICAL",
		TimeLimitHours: 1,
		Location:       "Emergency Room - Block A",
	}
}

func TestCreateAlert(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies every eligible donor", func(t *testing.T) {
		f := newFixture(t)
		f.addDonor(t, "d1", domain.BloodONeg, true)
		f.addDonor(t, "d2", domain.BloodONeg, false) // opted out
		f.addDonor(t, "d3", domain.BloodAPos, true)  // incompatible with O-

		alert, err := f.service.CreateAlert(ctx, &f.hospital, criticalONegInput())
		if err != nil {
			t.Fatalf("CreateAlert failed: %v", err)
		}

		view, err := f.service.GetAlert(alert.ID)
		if err != nil {
			t.Fatalf("GetAlert failed: %v", err)
		}
		if view.Counts.Notified != 1 {
			t.Errorf("expected 1 notified donor, got %d", view.Counts.Notified)
		}
		if created := f.dispatcher.byType(events.EventAlertCreated); len(created) != 1 {
			t.Errorf("expected 1 alert_created event, got %d", len(created))
		}
		if notified := f.dispatcher.byType(events.EventDonorNotified); len(notified) != 1 {
			t.Errorf("expected 1 donor_notified event, got %d", len(notified))
		}
	})

	t.Run("donors may not create alerts", func(t *testing.T) {
		f := newFixture(t)
		donor := f.addDonor(t, "d1", domain.BloodONeg, true)
		if _, err := f.service.CreateAlert(ctx, &donor, criticalONegInput()); !util.HasCode(err, "FORBIDDEN") {
			t.Errorf("expected FORBIDDEN, got %v", err)
		}
	})

	t.Run("validation propagates", func(t *testing.T) {
		f := newFixture(t)
		input := criticalONegInput()
		input.TimeLimitHours = 0
		if _, err := f.service.CreateAlert(ctx, &f.hospital, input); !util.HasCode(err, "VALIDATION_FAILED") {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})
}

func TestAwardLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d1 := f.addDonor(t, "d1", domain.BloodONeg, true)
	d2 := f.addDonor(t, "d2", domain.BloodONeg, true)

	alert, err := f.service.CreateAlert(ctx, &f.hospital, criticalONegInput())
	if err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	if err := f.service.Award(ctx, &d1, alert.ID); err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	view, _ := f.service.GetAlert(alert.ID)
	if view.Alert.Status != domain.AlertStatusResponded {
		t.Fatalf("expected RESPONDED after award, got %s", view.Alert.Status)
	}
	if view.Counts.AwardedDonorID == nil || *view.Counts.AwardedDonorID != d1.ID {
		t.Errorf("expected awarded donor %s, got %v", d1.ID, view.Counts.AwardedDonorID)
	}

	// The second donor loses the race.
	if err := f.service.Award(ctx, &d2, alert.ID); !util.HasCode(err, "ALREADY_AWARDED") {
		t.Errorf("expected ALREADY_AWARDED, got %v", err)
	}

	if _, err := f.service.CompleteAlert(ctx, &f.hospital, alert.ID); err != nil {
		t.Fatalf("CompleteAlert failed: %v", err)
	}
	view, _ = f.service.GetAlert(alert.ID)
	if view.Alert.Status != domain.AlertStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", view.Alert.Status)
	}

	// Completed is terminal.
	if _, err := f.service.CancelAlert(ctx, &f.hospital, alert.ID); !util.HasCode(err, "INVALID_TRANSITION") {
		t.Errorf("expected INVALID_TRANSITION, got %v", err)
	}
	if err := f.service.Award(ctx, &d2, alert.ID); !util.HasCode(err, "ALERT_NOT_PENDING") {
		t.Errorf("expected ALERT_NOT_PENDING, got %v", err)
	}

	if awarded := f.dispatcher.byType(events.EventDonorAwarded); len(awarded) != 1 {
		t.Errorf("expected exactly 1 donor_awarded event, got %d", len(awarded))
	}
}

func TestWithdrawReopensAlert(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d1 := f.addDonor(t, "d1", domain.BloodONeg, true)
	d2 := f.addDonor(t, "d2", domain.BloodONeg, true)

	alert, _ := f.service.CreateAlert(ctx, &f.hospital, criticalONegInput())
	if err := f.service.Award(ctx, &d1, alert.ID); err != nil {
		t.Fatalf("Award failed: %v", err)
	}
	if err := f.service.Withdraw(ctx, &d1, alert.ID); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	view, _ := f.service.GetAlert(alert.ID)
	if view.Alert.Status != domain.AlertStatusPending {
		t.Fatalf("expected PENDING after withdrawal, got %s", view.Alert.Status)
	}
	if err := f.service.Award(ctx, &d2, alert.ID); err != nil {
		t.Errorf("released slot should accept a new award: %v", err)
	}
}

func TestCancelRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alert, _ := f.service.CreateAlert(ctx, &f.hospital, criticalONegInput())

	other := domain.Identity{ID: "hosp-2", Role: domain.RoleHospital}
	if _, err := f.service.CancelAlert(ctx, &other, alert.ID); !util.HasCode(err, "FORBIDDEN") {
		t.Errorf("expected FORBIDDEN for foreign requester, got %v", err)
	}

	admin := domain.Identity{ID: "admin-1", Role: domain.RoleAdmin}
	if _, err := f.service.CancelAlert(ctx, &admin, alert.ID); err != nil {
		t.Errorf("admin should cancel any alert: %v", err)
	}
}

func TestDonorFeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	oneg := f.addDonor(t, "d1", domain.BloodONeg, true)
	apos := f.addDonor(t, "d2", domain.BloodAPos, true)

	if _, err := f.service.CreateAlert(ctx, &f.hospital, criticalONegInput()); err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}
	aposInput := criticalONegInput()
	aposInput.BloodType = "A+"
	if _, err := f.service.CreateAlert(ctx, &f.hospital, aposInput); err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	// The O- donor can serve both requests, the A+ donor only the A+ one.
	feed, err := f.service.DonorFeed(&oneg)
	if err != nil {
		t.Fatalf("DonorFeed failed: %v", err)
	}
	if len(feed) != 2 {
		t.Errorf("expected 2 alerts for O- donor, got %d", len(feed))
	}

	feed, err = f.service.DonorFeed(&apos)
	if err != nil {
		t.Fatalf("DonorFeed failed: %v", err)
	}
	if len(feed) != 1 {
		t.Errorf("expected 1 alert for A+ donor, got %d", len(feed))
	}

	t.Run("requesters have no feed", func(t *testing.T) {
		if _, err := f.service.DonorFeed(&f.hospital); !util.HasCode(err, "FORBIDDEN") {
			t.Errorf("expected FORBIDDEN, got %v", err)
		}
	})
}
