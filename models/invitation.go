package models

import "time"

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "PENDING"
	InvitationAccepted  InvitationStatus = "ACCEPTED"
	InvitationDeclined  InvitationStatus = "DECLINED"
	InvitationCancelled InvitationStatus = "CANCELLED"
)

func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationDeclined, InvitationCancelled:
		return true
	}
	return false
}

type MatchInvitation struct {
	ID          int              `json:"id" db:"id"`
	InviterID   int              `json:"inviter_id" db:"inviter_id"`
	InviteeID   int              `json:"invitee_id" db:"invitee_id"`
	SessionID   int              `json:"session_id" db:"session_id"`
	Status      InvitationStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty" db:"responded_at"`

	Inviter *UserSummary    `json:"inviter,omitempty" db:"-"`
	Invitee *UserSummary    `json:"invitee,omitempty" db:"-"`
	Session *SessionSummary `json:"session,omitempty" db:"-"`
}

type InvitationDirection string

const (
	InvitationsSent     InvitationDirection = "sent"
	InvitationsReceived InvitationDirection = "received"
)

type InvitationListOptions struct {
	Direction InvitationDirection
	Status    *InvitationStatus
}
