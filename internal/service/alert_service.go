package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/internal/events"
	"github.com/spec-kit/donation-service/internal/matching"
	"github.com/spec-kit/donation-service/internal/registry"
	"github.com/spec-kit/donation-service/internal/session"
	"github.com/spec-kit/donation-service/pkg/util"
)

// AlertService coordinates the emergency alert workflows across the registry,
// the matching coordinator, and the event dispatcher.
type AlertService struct {
	alerts     *registry.Registry
	matches    *matching.Coordinator
	directory  *session.Directory
	dispatcher events.Dispatcher
}

// AlertDependencies bundles collaborators for the alert service.
type AlertDependencies struct {
	Registry    *registry.Registry
	Coordinator *matching.Coordinator
	Directory   *session.Directory
	Dispatcher  events.Dispatcher
}

// CreateAlertInput describes an alert creation payload.
type CreateAlertInput struct {
	BloodType      string
	OrganType      *string
	Urgency        string
	TimeLimitHours float64
	Location       string
	Notes          string
}

// AlertView pairs an alert with its derived matching counts.
type AlertView struct {
	Alert  domain.Alert
	Counts matching.CandidateCounts
}

// NewAlertService constructs the service.
func NewAlertService(deps AlertDependencies) *AlertService {
	return &AlertService{
		alerts:     deps.Registry,
		matches:    deps.Coordinator,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
	}
}

// CreateAlert opens a new emergency request and notifies every eligible donor.
// Only hospitals and blood banks may request.
func (s *AlertService) CreateAlert(ctx context.Context, requester *domain.Identity, input CreateAlertInput) (*domain.Alert, error) {
	if requester == nil || !requester.Role.CanRequestAlerts() {
		return nil, util.NewForbidden("only hospitals and blood banks may create emergency requests")
	}

	alert, err := s.alerts.Create(registry.CreateInput{
		RequesterID:    requester.ID,
		RequesterRole:  requester.Role,
		BloodType:      input.BloodType,
		OrganType:      input.OrganType,
		Urgency:        input.Urgency,
		TimeLimitHours: input.TimeLimitHours,
		Location:       input.Location,
		Notes:          input.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventAlertCreated,
		AlertID: alert.ID,
		Actor:   events.Actor{ID: requester.ID, Role: requester.Role},
		Payload: events.AlertCreatedPayload{
			BloodType: alert.BloodType,
			OrganType: alert.OrganType,
			Urgency:   alert.Urgency,
			Deadline:  alert.Deadline,
			Location:  alert.Location,
		},
	})

	if err := s.notifyEligible(ctx, alert.ID); err != nil {
		return nil, err
	}
	return alert, nil
}

// notifyEligible walks the eligibility sequence and marks every compatible
// available donor notified.
func (s *AlertService) notifyEligible(ctx context.Context, alertID string) error {
	eligible, err := s.matches.EligibleDonors(alertID)
	if err != nil {
		return err
	}
	donorIDs := make([]string, 0)
	for donor := range eligible {
		donorIDs = append(donorIDs, donor.ID)
	}
	if len(donorIDs) == 0 {
		return nil
	}
	if err := s.matches.Notify(alertID, donorIDs); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventDonorNotified,
		AlertID: alertID,
		Payload: events.DonorNotifiedPayload{DonorIDs: donorIDs},
	})
	return nil
}

// CancelAlert declines a PENDING alert at the requester's initiative.
func (s *AlertService) CancelAlert(ctx context.Context, requester *domain.Identity, alertID string) (*domain.Alert, error) {
	if err := s.requireOwnership(requester, alertID); err != nil {
		return nil, err
	}
	alert, err := s.alerts.Transition(alertID, domain.AlertStatusDeclined, requester.ID, "requester cancelled")
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, alert, domain.AlertStatusPending, requester, "requester cancelled")
	return alert, nil
}

// CompleteAlert confirms fulfillment of a RESPONDED alert.
func (s *AlertService) CompleteAlert(ctx context.Context, requester *domain.Identity, alertID string) (*domain.Alert, error) {
	if err := s.requireOwnership(requester, alertID); err != nil {
		return nil, err
	}
	alert, err := s.alerts.Transition(alertID, domain.AlertStatusCompleted, requester.ID, "fulfillment confirmed")
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, alert, domain.AlertStatusResponded, requester, "fulfillment confirmed")
	return alert, nil
}

// GetAlert returns one alert with its matching counts.
func (s *AlertService) GetAlert(alertID string) (*AlertView, error) {
	alert, err := s.alerts.Get(alertID)
	if err != nil {
		return nil, err
	}
	return &AlertView{Alert: *alert, Counts: s.matches.Counts(alert.ID)}, nil
}

// ListAlerts returns all alerts, optionally filtered by status.
func (s *AlertService) ListAlerts(status *domain.AlertStatus) []AlertView {
	var alerts []domain.Alert
	if status != nil {
		alerts = s.alerts.ListByStatus(*status)
	} else {
		alerts = s.alerts.List()
	}
	views := make([]AlertView, 0, len(alerts))
	for _, alert := range alerts {
		views = append(views, AlertView{Alert: alert, Counts: s.matches.Counts(alert.ID)})
	}
	return views
}

// CountsByUrgency aggregates alert counts per urgency tier.
func (s *AlertService) CountsByUrgency() map[domain.Urgency]int {
	return s.alerts.CountsByUrgency()
}

// CountsByStatus aggregates alert counts per lifecycle status.
func (s *AlertService) CountsByStatus() map[domain.AlertStatus]int {
	return s.alerts.CountsByStatus()
}

// History returns the audit trail for an alert.
func (s *AlertService) History(alertID string) ([]registry.HistoryEntry, error) {
	return s.alerts.History(alertID)
}

// DonorFeed lists PENDING alerts addressed to the donor's blood type.
func (s *AlertService) DonorFeed(donor *domain.Identity) ([]AlertView, error) {
	if donor == nil || donor.Role != domain.RoleDonor {
		return nil, util.NewForbidden("donor role required")
	}
	profile, ok := s.directory.DonorByID(donor.ID)
	if !ok {
		return nil, util.NewNotFound("donor profile", map[string]any{"donor_id": donor.ID})
	}

	views := make([]AlertView, 0)
	for _, alert := range s.alerts.ListByStatus(domain.AlertStatusPending) {
		if !profile.BloodType.CanDonateTo(alert.BloodType) {
			continue
		}
		views = append(views, AlertView{Alert: alert, Counts: s.matches.Counts(alert.ID)})
	}
	return views, nil
}

// Respond records a donor's willingness to fulfill an alert.
func (s *AlertService) Respond(ctx context.Context, donor *domain.Identity, alertID string) error {
	if donor == nil || donor.Role != domain.RoleDonor {
		return util.NewForbidden("donor role required")
	}
	if err := s.matches.Respond(alertID, donor.ID); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventDonorResponded,
		AlertID: alertID,
		Actor:   events.Actor{ID: donor.ID, Role: donor.Role},
		Payload: events.DonorRespondedPayload{DonorID: donor.ID},
	})
	return nil
}

// Award grants the donor the fulfilling slot. Racing donors observe
// ALREADY_AWARDED; callers surface it as an expected outcome.
func (s *AlertService) Award(ctx context.Context, donor *domain.Identity, alertID string) error {
	if donor == nil || donor.Role != domain.RoleDonor {
		return util.NewForbidden("donor role required")
	}
	if err := s.matches.Award(alertID, donor.ID); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventDonorAwarded,
		AlertID: alertID,
		Actor:   events.Actor{ID: donor.ID, Role: donor.Role},
		Payload: events.DonorAwardedPayload{DonorID: donor.ID},
	})
	return nil
}

// Withdraw backs the awarded donor out, reopening the alert.
func (s *AlertService) Withdraw(ctx context.Context, donor *domain.Identity, alertID string) error {
	if donor == nil || donor.Role != domain.RoleDonor {
		return util.NewForbidden("donor role required")
	}
	if err := s.matches.Withdraw(alertID, donor.ID); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventAlertStatusChanged,
		AlertID: alertID,
		Actor:   events.Actor{ID: donor.ID, Role: donor.Role},
		Payload: events.AlertStatusChangedPayload{
			OldStatus: domain.AlertStatusResponded,
			NewStatus: domain.AlertStatusPending,
			Comment:   "awarded donor withdrew",
		},
	})
	return nil
}

func (s *AlertService) requireOwnership(requester *domain.Identity, alertID string) error {
	if requester == nil {
		return util.NewForbidden("authentication required")
	}
	alert, err := s.alerts.Get(alertID)
	if err != nil {
		return err
	}
	if requester.Role == domain.RoleAdmin {
		return nil
	}
	if alert.RequesterID != requester.ID {
		return util.NewForbidden("alert belongs to another requester")
	}
	return nil
}

func (s *AlertService) publishStatusChange(ctx context.Context, alert *domain.Alert, from domain.AlertStatus, actor *domain.Identity, comment string) {
	s.publishEvent(ctx, events.Event{
		Type:    events.EventAlertStatusChanged,
		AlertID: alert.ID,
		Actor:   events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.AlertStatusChangedPayload{
			OldStatus: from,
			NewStatus: alert.Status,
			Comment:   comment,
		},
	})
}

func (s *AlertService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
