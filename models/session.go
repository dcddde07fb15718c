package models

import "time"

type MatchType string

const (
	MatchTypeSinglesMen   MatchType = "singles_men"
	MatchTypeSinglesWomen MatchType = "singles_women"
	MatchTypeDoublesMen   MatchType = "doubles_men"
	MatchTypeDoublesWomen MatchType = "doubles_women"
	MatchTypeDoublesMixed MatchType = "doubles_mixed"
)

// Quorum returns the number of participants needed to start a session of
// this type. Unknown types return 0.
func (t MatchType) Quorum() int {
	switch t {
	case MatchTypeSinglesMen, MatchTypeSinglesWomen:
		return 2
	case MatchTypeDoublesMen, MatchTypeDoublesWomen, MatchTypeDoublesMixed:
		return 4
	default:
		return 0
	}
}

func (t MatchType) Valid() bool {
	return t.Quorum() > 0
}

type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "PENDING"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
)

type MatchSession struct {
	ID                  int           `json:"id" db:"id"`
	CreatorID           int           `json:"creator_id" db:"creator_id"`
	MatchType           MatchType     `json:"match_type" db:"match_type"`
	Status              SessionStatus `json:"status" db:"status"`
	Title               string        `json:"title" db:"title"`
	Location            *string       `json:"location,omitempty" db:"location"`
	ScheduledAt         time.Time     `json:"scheduled_at" db:"scheduled_at"`
	EntryFeePoints      int           `json:"entry_fee_points" db:"entry_fee_points"`
	EntryFeeFeathers    int           `json:"entry_fee_feathers" db:"entry_fee_feathers"`
	CurrentParticipants int           `json:"current_participants" db:"current_participants"`
	StartedAt           *time.Time    `json:"started_at,omitempty" db:"started_at"`
	CompletedAt         *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt         *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`

	Participants []MatchParticipant `json:"participants,omitempty" db:"-"`
	Schedules    []SessionSchedule  `json:"schedules,omitempty" db:"-"`
}

// SessionSummary is the short form of a session embedded in invitations.
type SessionSummary struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	MatchType   MatchType     `json:"match_type"`
	Status      SessionStatus `json:"status"`
	ScheduledAt time.Time     `json:"scheduled_at"`
}

// SessionListOptions enumerates every supported session filter.
type SessionListOptions struct {
	Status        *SessionStatus
	MatchType     *MatchType
	CreatorID     *int
	ParticipantID *int
	Limit         int
	Offset        int
}

type SessionSchedule struct {
	ID        int       `json:"id" db:"id"`
	SessionID int       `json:"session_id" db:"session_id"`
	StartsAt  time.Time `json:"starts_at" db:"starts_at"`
	Note      *string   `json:"note,omitempty" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	AttendeeIDs []int `json:"attendee_ids,omitempty" db:"-"`
}
