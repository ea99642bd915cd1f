package domain

import "time"

// MatchResponse enumerates a donor's state against one alert.
type MatchResponse string

const (
	MatchUnnotified MatchResponse = "UNNOTIFIED"
	MatchNotified   MatchResponse = "NOTIFIED"
	MatchResponded  MatchResponse = "RESPONDED"
	MatchAwarded    MatchResponse = "AWARDED"
	MatchRejected   MatchResponse = "REJECTED"
)

// MatchCandidate tracks one donor's notification/response/award state against
// one alert. At most one candidate per (alert, donor) pair; at most one
// candidate per alert may hold AWARDED.
type MatchCandidate struct {
	AlertID     string
	DonorID     string
	Response    MatchResponse
	NotifiedAt  *time.Time
	RespondedAt *time.Time
}
