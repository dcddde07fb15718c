package models

import "time"

type PointActionType string

const (
	PointActionMatchWin      PointActionType = "match_win"
	PointActionSessionHosted PointActionType = "session_hosted"
)

// PointTransaction is an append-only ledger entry. The (UserID, ActionType,
// SourceID) triple is unique.
type PointTransaction struct {
	ID         int             `json:"id" db:"id"`
	UserID     int             `json:"user_id" db:"user_id"`
	ActionType PointActionType `json:"action_type" db:"action_type"`
	SourceID   string          `json:"source_id" db:"source_id"`
	Points     int             `json:"points" db:"points"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
