package models

import (
	"strings"
	"time"
)

// User represents a profile synced from the external auth provider
type User struct {
	ID          int64     `db:"id" json:"id"`
	AuthID      string    `db:"auth_id" json:"auth_id"`
	Email       string    `db:"email" json:"email"`
	Username    string    `db:"username" json:"username,omitempty"`
	DisplayName string    `db:"display_name" json:"display_name,omitempty"`
	PhotoURL    string    `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UserPublic is the subset of user fields exposed to other members
type UserPublic struct {
	AuthID      string `json:"auth_id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Public returns the shareable view of the user
func (u *User) Public() UserPublic {
	return UserPublic{
		AuthID:      u.AuthID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}

// NormalizeUsername trims surrounding whitespace from a username
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// DefaultDisplayName picks a display name when none was provided:
// the username if set, otherwise the local part of the email.
func DefaultDisplayName(username, email string) string {
	if username != "" {
		return username
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
