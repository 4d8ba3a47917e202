package models

import (
	"time"
)

// Group is a named collection of users with a single owner.
// The owner is always part of the member set.
type Group struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	OwnerAuthID string    `db:"owner_auth_id" json:"owner_auth_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// GroupDetail combines a group with its hydrated member profiles
type GroupDetail struct {
	Group   *Group       `json:"group"`
	Members []UserPublic `json:"members"`
}

// HasMember checks whether the given auth id is in the member set
func (gd *GroupDetail) HasMember(authID string) bool {
	for _, member := range gd.Members {
		if member.AuthID == authID {
			return true
		}
	}
	return false
}
