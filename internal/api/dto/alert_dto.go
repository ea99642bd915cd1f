package dto

import (
	"time"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/internal/registry"
	"github.com/spec-kit/donation-service/internal/service"
)

// CreateAlertRequest payload for emergency requests.
type CreateAlertRequest struct {
	BloodType      string  `json:"blood_type"`
	OrganType      *string `json:"organ_type,omitempty"`
	Urgency        string  `json:"urgency"`
	TimeLimitHours float64 `json:"time_limit_hours"`
	Location       string  `json:"location"`
	Notes          string  `json:"notes"`
}

// AlertResponse is the alert shape every role receives.
type AlertResponse struct {
	ID             string             `json:"id"`
	RequesterID    string             `json:"requester_id"`
	RequesterRole  domain.Role        `json:"requester_role"`
	BloodType      domain.BloodType   `json:"blood_type"`
	OrganType      *string            `json:"organ_type,omitempty"`
	Urgency        domain.Urgency     `json:"urgency"`
	Status         domain.AlertStatus `json:"status"`
	Location       string             `json:"location,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	Deadline       time.Time          `json:"deadline"`
	ClosedAt       *time.Time         `json:"closed_at,omitempty"`
	NotifiedDonors int                `json:"notified_donors"`
	Responses      int                `json:"responses"`
	AwardedDonorID *string            `json:"awarded_donor_id,omitempty"`
}

// NewAlertResponse maps an alert view.
func NewAlertResponse(view service.AlertView) AlertResponse {
	return AlertResponse{
		ID:             view.Alert.ID,
		RequesterID:    view.Alert.RequesterID,
		RequesterRole:  view.Alert.RequesterRole,
		BloodType:      view.Alert.BloodType,
		OrganType:      view.Alert.OrganType,
		Urgency:        view.Alert.Urgency,
		Status:         view.Alert.Status,
		Location:       view.Alert.Location,
		Notes:          view.Alert.Notes,
		CreatedAt:      view.Alert.CreatedAt,
		Deadline:       view.Alert.Deadline,
		ClosedAt:       view.Alert.ClosedAt,
		NotifiedDonors: view.Counts.Notified,
		Responses:      view.Counts.Responded,
		AwardedDonorID: view.Counts.AwardedDonorID,
	}
}

// HistoryEntryResponse maps one audit trail entry.
type HistoryEntryResponse struct {
	At      time.Time          `json:"at"`
	ActorID string             `json:"actor_id,omitempty"`
	From    domain.AlertStatus `json:"from"`
	To      domain.AlertStatus `json:"to"`
	Comment string             `json:"comment,omitempty"`
}

// NewHistoryResponse maps an audit trail.
func NewHistoryResponse(entries []registry.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryEntryResponse{
			At:      entry.At,
			ActorID: entry.ActorID,
			From:    entry.From,
			To:      entry.To,
			Comment: entry.Comment,
		})
	}
	return out
}
