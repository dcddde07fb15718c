package models

import "time"

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// IsElevated reports whether the role may act on resources it does not own.
func (r UserRole) IsElevated() bool {
	return r == RoleAdmin || r == RoleModerator
}

type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusBanned UserStatus = "banned"
)

const DefaultEloRating = 1500

type User struct {
	ID            int        `json:"id" db:"id"`
	Nickname      string     `json:"nickname" db:"nickname"`
	Email         string     `json:"email,omitempty" db:"email"`
	Role          UserRole   `json:"role" db:"role"`
	Status        UserStatus `json:"status" db:"status"`
	EloRating     int        `json:"elo_rating" db:"elo_rating"`
	PointsBalance int        `json:"points_balance" db:"points_balance"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}

// UserSummary is the short form of a user embedded in other resources.
type UserSummary struct {
	ID        int     `json:"id"`
	Nickname  string  `json:"nickname"`
	AvatarKey *string `json:"-"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Actor is the authenticated caller, resolved once at the request boundary.
type Actor struct {
	UserID int
	Role   UserRole
}

type UserFilter struct {
	Search string
	Role   *UserRole
	Status *UserStatus
	Page   int
	Limit  int
}

type UserListResponse struct {
	Users      []User `json:"users"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}
