package models

import (
	"time"
)

// PlaidItem stores the access token for one linked financial institution
type PlaidItem struct {
	ID              int64     `db:"id" json:"id"`
	AuthID          string    `db:"auth_id" json:"auth_id"`
	ItemID          string    `db:"item_id" json:"item_id"`
	AccessToken     string    `db:"access_token" json:"-"`
	InstitutionName string    `db:"institution_name" json:"institution_name,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
