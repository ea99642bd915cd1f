package domain

import "time"

// AlertStatus enumerates lifecycle states for emergency alerts.
type AlertStatus string

const (
	AlertStatusPending   AlertStatus = "PENDING"
	AlertStatusResponded AlertStatus = "RESPONDED"
	AlertStatusCompleted AlertStatus = "COMPLETED"
	AlertStatusDeclined  AlertStatus = "DECLINED"
)

// Urgency enumerates alert urgency tiers.
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
)

// ParseUrgency validates an urgency string.
func ParseUrgency(s string) (Urgency, bool) {
	switch Urgency(s) {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return Urgency(s), true
	}
	return "", false
}

// Alert is the aggregate for emergency blood/organ requests.
type Alert struct {
	ID            string
	RequesterID   string
	RequesterRole Role
	BloodType     BloodType
	OrganType     *string
	Urgency       Urgency
	Status        AlertStatus
	Location      string
	Notes         string
	CreatedAt     time.Time
	Deadline      time.Time
	ClosedAt      *time.Time
}

// Terminal reports whether the status admits no further transitions.
func (s AlertStatus) Terminal() bool {
	return s == AlertStatusCompleted || s == AlertStatusDeclined
}

// allowedAlertTransitions encodes the lifecycle. RESPONDED reverts to PENDING
// when the awarded donor backs out, releasing the slot.
var allowedAlertTransitions = map[AlertStatus][]AlertStatus{
	AlertStatusPending:   {AlertStatusResponded, AlertStatusDeclined},
	AlertStatusResponded: {AlertStatusCompleted, AlertStatusPending},
	AlertStatusCompleted: {},
	AlertStatusDeclined:  {},
}

// ValidAlertTransition reports whether next is reachable from current.
func ValidAlertTransition(current, next AlertStatus) bool {
	for _, candidate := range allowedAlertTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Expired reports whether the alert deadline has passed at the given instant.
func (a *Alert) Expired(now time.Time) bool {
	return now.After(a.Deadline)
}
