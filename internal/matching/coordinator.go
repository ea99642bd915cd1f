package matching

import (
	"iter"
	"sync"
	"time"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/pkg/util"
)

// DonorSource provides donor profiles for eligibility checks.
type DonorSource interface {
	Donors() []domain.DonorProfile
}

// AlertSource is the coordinator's port into the alert registry. The
// coordinator may read alerts and request transitions, but never writes alert
// status directly.
type AlertSource interface {
	Get(alertID string) (*domain.Alert, error)
	Transition(alertID string, to domain.AlertStatus, actorID, comment string) (*domain.Alert, error)
}

// CandidateCounts aggregates per-alert matching numbers.
type CandidateCounts struct {
	Notified       int
	Responded      int
	AwardedDonorID *string
}

// Coordinator exclusively owns MatchCandidate rows. Award is the one place
// true mutual exclusion is required: all awards serialize on c.mu, so at most
// one donor ever holds the awarded slot per alert.
type Coordinator struct {
	mu         sync.Mutex
	alerts     AlertSource
	donors     DonorSource
	candidates map[string]map[string]*domain.MatchCandidate
	now        func() time.Time
}

// New builds a coordinator over the given sources.
func New(alerts AlertSource, donors DonorSource) *Coordinator {
	return &Coordinator{
		alerts:     alerts,
		donors:     donors,
		candidates: make(map[string]map[string]*domain.MatchCandidate),
		now:        time.Now,
	}
}

// EligibleDonors returns a lazy, restartable sequence of donors whose blood
// type is compatible with the alert's required type and who are opted into
// emergency availability. Each restart re-reads the donor source.
func (c *Coordinator) EligibleDonors(alertID string) (iter.Seq[domain.DonorProfile], error) {
	alert, err := c.alerts.Get(alertID)
	if err != nil {
		return nil, err
	}
	required := alert.BloodType
	return func(yield func(domain.DonorProfile) bool) {
		for _, donor := range c.donors.Donors() {
			if donor.Role != domain.RoleDonor || !donor.AvailableForEmergency {
				continue
			}
			if !donor.BloodType.CanDonateTo(required) {
				continue
			}
			if !yield(donor) {
				return
			}
		}
	}, nil
}

// Notify marks candidates as notified for the given donors. Idempotent per
// donor: an already-notified candidate keeps its original notification time.
func (c *Coordinator) Notify(alertID string, donorIDs []string) error {
	if _, err := c.alerts.Get(alertID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, donorID := range donorIDs {
		candidate := c.candidate(alertID, donorID)
		if candidate.Response != domain.MatchUnnotified {
			continue
		}
		notifiedAt := c.now()
		candidate.Response = domain.MatchNotified
		candidate.NotifiedAt = &notifiedAt
	}
	return nil
}

// Respond records a donor's willingness to fulfill a PENDING alert.
func (c *Coordinator) Respond(alertID, donorID string) error {
	alert, err := c.alerts.Get(alertID)
	if err != nil {
		return err
	}
	if alert.Status != domain.AlertStatusPending {
		return util.NewAlertNotPending(string(alert.Status))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	candidate := c.candidate(alertID, donorID)
	if candidate.Response == domain.MatchAwarded {
		return nil
	}
	respondedAt := c.now()
	candidate.Response = domain.MatchResponded
	candidate.RespondedAt = &respondedAt
	return nil
}

// Award grants the donor the fulfilling slot and requests the registry
// transition to RESPONDED. Exactly one award can succeed per alert; racing
// callers observe ALREADY_AWARDED and should treat it as expected.
func (c *Coordinator) Award(alertID, donorID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, candidate := range c.candidates[alertID] {
		if candidate.Response == domain.MatchAwarded {
			return util.NewAlreadyAwarded(alertID)
		}
	}

	alert, err := c.alerts.Get(alertID)
	if err != nil {
		return err
	}
	if alert.Status != domain.AlertStatusPending {
		return util.NewAlertNotPending(string(alert.Status))
	}
	if _, err := c.alerts.Transition(alertID, domain.AlertStatusResponded, donorID, "donor awarded"); err != nil {
		return err
	}

	candidate := c.candidate(alertID, donorID)
	candidate.Response = domain.MatchAwarded
	if candidate.RespondedAt == nil {
		respondedAt := c.now()
		candidate.RespondedAt = &respondedAt
	}
	return nil
}

// Withdraw backs the awarded donor out, reverting the alert to PENDING and
// releasing the slot for another award.
func (c *Coordinator) Withdraw(alertID, donorID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidate, ok := c.candidates[alertID][donorID]
	if !ok || candidate.Response != domain.MatchAwarded {
		return util.NewNotFound("awarded candidate", map[string]any{"alert_id": alertID, "donor_id": donorID})
	}
	if _, err := c.alerts.Transition(alertID, domain.AlertStatusPending, donorID, "awarded donor withdrew"); err != nil {
		return err
	}
	candidate.Response = domain.MatchRejected
	return nil
}

// Candidates returns a snapshot of the candidate rows for an alert.
func (c *Coordinator) Candidates(alertID string) []domain.MatchCandidate {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.MatchCandidate, 0, len(c.candidates[alertID]))
	for _, candidate := range c.candidates[alertID] {
		out = append(out, *candidate)
	}
	return out
}

// Counts derives the notified/responded numbers shown on requester dashboards.
func (c *Coordinator) Counts(alertID string) CandidateCounts {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := CandidateCounts{}
	for _, candidate := range c.candidates[alertID] {
		if candidate.NotifiedAt != nil {
			counts.Notified++
		}
		switch candidate.Response {
		case domain.MatchResponded:
			counts.Responded++
		case domain.MatchAwarded:
			counts.Responded++
			donorID := candidate.DonorID
			counts.AwardedDonorID = &donorID
		}
	}
	return counts
}

// candidate returns the row for (alert, donor), creating it on first touch.
// Callers hold c.mu.
func (c *Coordinator) candidate(alertID, donorID string) *domain.MatchCandidate {
	rows, ok := c.candidates[alertID]
	if !ok {
		rows = make(map[string]*domain.MatchCandidate)
		c.candidates[alertID] = rows
	}
	candidate, ok := rows[donorID]
	if !ok {
		candidate = &domain.MatchCandidate{
			AlertID:  alertID,
			DonorID:  donorID,
			Response: domain.MatchUnnotified,
		}
		rows[donorID] = candidate
	}
	return candidate
}
