package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/pkg/util"
)

// CreateInput describes an emergency alert creation payload.
type CreateInput struct {
	RequesterID    string
	RequesterRole  domain.Role
	BloodType      string
	OrganType      *string
	Urgency        string
	TimeLimitHours float64
	Location       string
	Notes          string
}

// HistoryEntry records one status change for the audit trail.
type HistoryEntry struct {
	At      time.Time
	ActorID string
	From    domain.AlertStatus
	To      domain.AlertStatus
	Comment string
}

// Registry exclusively owns alert records and their status transitions. A
// PENDING alert past its deadline reads as DECLINED; the expiry is applied on
// every access, not by a scheduler.
type Registry struct {
	mu      sync.Mutex
	alerts  map[string]*domain.Alert
	history map[string][]HistoryEntry
	now     func() time.Time
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{
		alerts:  make(map[string]*domain.Alert),
		history: make(map[string][]HistoryEntry),
		now:     time.Now,
	}
}

// Create allocates a new PENDING alert.
func (r *Registry) Create(input CreateInput) (*domain.Alert, error) {
	bloodType, err := domain.ParseBloodType(input.BloodType)
	if err != nil {
		return nil, util.NewValidationError(err.Error(), map[string]any{"blood_type": input.BloodType})
	}
	urgency, ok := domain.ParseUrgency(input.Urgency)
	if !ok {
		return nil, util.NewValidationError("unknown urgency", map[string]any{"urgency": input.Urgency})
	}
	if input.TimeLimitHours <= 0 {
		return nil, util.NewValidationError("time limit must be positive", map[string]any{"time_limit_hours": input.TimeLimitHours})
	}

	now := r.now()
	alert := &domain.Alert{
		ID:            generateAlertID(),
		RequesterID:   input.RequesterID,
		RequesterRole: input.RequesterRole,
		BloodType:     bloodType,
		OrganType:     input.OrganType,
		Urgency:       urgency,
		Status:        domain.AlertStatusPending,
		Location:      strings.TrimSpace(input.Location),
		Notes:         strings.TrimSpace(input.Notes),
		CreatedAt:     now,
		Deadline:      now.Add(time.Duration(input.TimeLimitHours * float64(time.Hour))),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[alert.ID] = alert

	copied := *alert
	return &copied, nil
}

// Transition applies a legal status change.
func (r *Registry) Transition(alertID string, to domain.AlertStatus, actorID, comment string) (*domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert, ok := r.alerts[alertID]
	if !ok {
		return nil, util.NewNotFound("alert", map[string]any{"alert_id": alertID})
	}
	r.applyExpiry(alert)

	if !domain.ValidAlertTransition(alert.Status, to) {
		return nil, util.NewInvalidTransition(string(alert.Status), string(to))
	}
	r.record(alert, to, actorID, comment)
	return copyOf(alert), nil
}

// Get returns the alert by id, expiry applied.
func (r *Registry) Get(alertID string) (*domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert, ok := r.alerts[alertID]
	if !ok {
		return nil, util.NewNotFound("alert", map[string]any{"alert_id": alertID})
	}
	r.applyExpiry(alert)
	return copyOf(alert), nil
}

// List returns all alerts, expiry applied.
func (r *Registry) List() []domain.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Alert, 0, len(r.alerts))
	for _, alert := range r.alerts {
		r.applyExpiry(alert)
		out = append(out, *alert)
	}
	return out
}

// ListByStatus returns alerts currently in the given status.
func (r *Registry) ListByStatus(status domain.AlertStatus) []domain.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Alert, 0)
	for _, alert := range r.alerts {
		r.applyExpiry(alert)
		if alert.Status == status {
			out = append(out, *alert)
		}
	}
	return out
}

// CountsByUrgency aggregates alert counts per urgency tier.
func (r *Registry) CountsByUrgency() map[domain.Urgency]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[domain.Urgency]int)
	for _, alert := range r.alerts {
		r.applyExpiry(alert)
		counts[alert.Urgency]++
	}
	return counts
}

// CountsByStatus aggregates alert counts per lifecycle status.
func (r *Registry) CountsByStatus() map[domain.AlertStatus]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[domain.AlertStatus]int)
	for _, alert := range r.alerts {
		r.applyExpiry(alert)
		counts[alert.Status]++
	}
	return counts
}

// History returns the audit trail for an alert.
func (r *Registry) History(alertID string) ([]HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[alertID]; !ok {
		return nil, util.NewNotFound("alert", map[string]any{"alert_id": alertID})
	}
	entries := r.history[alertID]
	out := make([]HistoryEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// applyExpiry declines a PENDING alert whose deadline has passed. An award is
// the only path out of PENDING into RESPONDED, so a PENDING alert past its
// deadline by construction has no awarded donor. Callers hold r.mu.
func (r *Registry) applyExpiry(alert *domain.Alert) {
	if alert.Status != domain.AlertStatusPending {
		return
	}
	if !alert.Expired(r.now()) {
		return
	}
	r.record(alert, domain.AlertStatusDeclined, "", "deadline expired with no awarded donor")
}

// record applies the transition and appends the audit entry. Callers hold r.mu.
func (r *Registry) record(alert *domain.Alert, to domain.AlertStatus, actorID, comment string) {
	from := alert.Status
	alert.Status = to
	if to.Terminal() {
		closedAt := r.now()
		alert.ClosedAt = &closedAt
	} else {
		alert.ClosedAt = nil
	}
	r.history[alert.ID] = append(r.history[alert.ID], HistoryEntry{
		At:      r.now(),
		ActorID: actorID,
		From:    from,
		To:      to,
		Comment: comment,
	})
}

func copyOf(alert *domain.Alert) *domain.Alert {
	copied := *alert
	return &copied
}

func generateAlertID() string {
	return "SOS-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
