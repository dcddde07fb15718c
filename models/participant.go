package models

import "time"

type MatchParticipant struct {
	SessionID int       `json:"session_id" db:"session_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`

	User *UserSummary `json:"user,omitempty" db:"-"`
}
