package events

import (
	"time"

	"github.com/spec-kit/donation-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAlertCreated       EventType = "alert_created"
	EventAlertStatusChanged EventType = "alert_status_changed"
	EventDonorNotified      EventType = "donor_notified"
	EventDonorResponded     EventType = "donor_responded"
	EventDonorAwarded       EventType = "donor_awarded"
	EventSessionStarted     EventType = "session_started"
	EventSessionEnded       EventType = "session_ended"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id,omitempty"`
	Role domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AlertID   string      `json:"alert_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AlertCreatedPayload payload.
type AlertCreatedPayload struct {
	BloodType domain.BloodType `json:"blood_type"`
	OrganType *string          `json:"organ_type,omitempty"`
	Urgency   domain.Urgency   `json:"urgency"`
	Deadline  time.Time        `json:"deadline"`
	Location  string           `json:"location,omitempty"`
}

// AlertStatusChangedPayload payload.
type AlertStatusChangedPayload struct {
	OldStatus domain.AlertStatus `json:"old_status"`
	NewStatus domain.AlertStatus `json:"new_status"`
	Comment   string             `json:"comment,omitempty"`
}

// DonorNotifiedPayload payload.
type DonorNotifiedPayload struct {
	DonorIDs []string `json:"donor_ids"`
}

// DonorRespondedPayload payload.
type DonorRespondedPayload struct {
	DonorID string `json:"donor_id"`
}

// DonorAwardedPayload payload.
type DonorAwardedPayload struct {
	DonorID string `json:"donor_id"`
}

// SessionPayload payload for session lifecycle events.
type SessionPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}
