package models

import "time"

type MatchOutcome string

const (
	OutcomePlayer1Win MatchOutcome = "player1_win"
	OutcomePlayer2Win MatchOutcome = "player2_win"
	OutcomeDraw       MatchOutcome = "draw"
)

func (o MatchOutcome) Valid() bool {
	switch o {
	case OutcomePlayer1Win, OutcomePlayer2Win, OutcomeDraw:
		return true
	}
	return false
}

type MatchResult struct {
	ID               int          `json:"id" db:"id"`
	SessionID        *int         `json:"session_id,omitempty" db:"session_id"`
	Player1ID        int          `json:"player1_id" db:"player1_id"`
	Player2ID        int          `json:"player2_id" db:"player2_id"`
	Player1Score     int          `json:"player1_score" db:"player1_score"`
	Player2Score     int          `json:"player2_score" db:"player2_score"`
	Outcome          MatchOutcome `json:"outcome" db:"outcome"`
	Player1Confirmed bool         `json:"player1_confirmed" db:"player1_confirmed"`
	Player2Confirmed bool         `json:"player2_confirmed" db:"player2_confirmed"`
	ConfirmedAt      *time.Time   `json:"confirmed_at,omitempty" db:"confirmed_at"`
	SettledAt        *time.Time   `json:"settled_at,omitempty" db:"settled_at"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
}

func (r *MatchResult) BothConfirmed() bool {
	return r.Player1Confirmed && r.Player2Confirmed
}

// WinnerID returns the winning player, or false for draws.
func (r *MatchResult) WinnerID() (int, bool) {
	switch r.Outcome {
	case OutcomePlayer1Win:
		return r.Player1ID, true
	case OutcomePlayer2Win:
		return r.Player2ID, true
	default:
		return 0, false
	}
}

func (r *MatchResult) HasPlayer(userID int) bool {
	return r.Player1ID == userID || r.Player2ID == userID
}

// RatingChange is one player's ELO movement caused by a settled result.
type RatingChange struct {
	ResultID     int       `json:"result_id" db:"result_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	RatingBefore int       `json:"rating_before" db:"rating_before"`
	RatingAfter  int       `json:"rating_after" db:"rating_after"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
