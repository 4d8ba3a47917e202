package models

import (
	"time"
)

// Transaction is an append-only spending record tied to one bet and one
// participant. Records are immutable once created.
type Transaction struct {
	ID         int64     `db:"id" json:"id"`
	BetID      int64     `db:"bet_id" json:"bet_id"`
	AuthID     string    `db:"auth_id" json:"auth_id"`
	Amount     float64   `db:"amount" json:"amount"`
	Merchant   string    `db:"merchant" json:"merchant"`
	Category   string    `db:"category" json:"category,omitempty"`
	OccurredOn time.Time `db:"occurred_on" json:"occurred_on"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
