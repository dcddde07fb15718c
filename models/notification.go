package models

import "time"

type NotificationType string

const (
	NotificationInvitationReceived NotificationType = "invitation_received"
	NotificationInvitationAnswered NotificationType = "invitation_answered"
	NotificationSessionStarted     NotificationType = "session_started"
	NotificationSessionCancelled   NotificationType = "session_cancelled"
	NotificationParticipantKicked  NotificationType = "participant_kicked"
	NotificationResultSubmitted    NotificationType = "result_submitted"
	NotificationResultConfirmed    NotificationType = "result_confirmed"
	NotificationPointsAwarded      NotificationType = "points_awarded"
)

type Notification struct {
	ID        int              `json:"id" db:"id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Link      *string          `json:"link,omitempty" db:"link"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
