package models

import (
	"math"
	"time"
)

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusActive    BetStatus = "active"
	BetStatusCompleted BetStatus = "completed"
	BetStatusCancelled BetStatus = "cancelled"
)

// Bet is a group-scoped budget challenge settled by lowest total spending
type Bet struct {
	ID           int64      `db:"id" json:"id"`
	GroupID      int64      `db:"group_id" json:"group_id"`
	CreatedBy    string     `db:"created_by" json:"created_by"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description,omitempty"`
	BudgetLimit  float64    `db:"budget_limit" json:"budget_limit"`
	Deadline     time.Time  `db:"deadline" json:"deadline"`
	Status       BetStatus  `db:"status" json:"status"`
	WinnerAuthID *string    `db:"winner_auth_id" json:"winner_auth_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	ActivatedAt  *time.Time `db:"activated_at" json:"activated_at,omitempty"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// BetParticipant is a group member enrolled in a specific bet.
// Display fields are cached from the user directory at creation time.
type BetParticipant struct {
	ID          int64     `db:"id" json:"-"`
	BetID       int64     `db:"bet_id" json:"-"`
	AuthID      string    `db:"auth_id" json:"auth_id"`
	Username    string    `db:"username" json:"username,omitempty"`
	DisplayName string    `db:"display_name" json:"display_name,omitempty"`
	PhotoURL    string    `db:"photo_url" json:"photo_url,omitempty"`
	Accepted    bool      `db:"accepted" json:"accepted"`
	Spending    float64   `db:"spending" json:"spending"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// BetDetail combines a bet with its participants and transaction ledger.
// Participants are kept in stored (insertion) order; that order is the
// tie-break order at settlement.
type BetDetail struct {
	Bet          *Bet              `json:"bet"`
	Participants []*BetParticipant `json:"participants"`
	Transactions []*Transaction    `json:"transactions"`
}

// IsPending checks if the bet is awaiting participant acceptance
func (b *Bet) IsPending() bool {
	return b.Status == BetStatusPending
}

// IsActive checks if the bet is running
func (b *Bet) IsActive() bool {
	return b.Status == BetStatusActive
}

// IsCompleted checks if the bet has been settled
func (b *Bet) IsCompleted() bool {
	return b.Status == BetStatusCompleted
}

// IsCancelled checks if the bet was cancelled before activation
func (b *Bet) IsCancelled() bool {
	return b.Status == BetStatusCancelled
}

// IsTerminal checks if no further transitions are possible
func (b *Bet) IsTerminal() bool {
	return b.IsCompleted() || b.IsCancelled()
}

// AcceptsTransactions checks if spending may still be recorded
func (b *Bet) AcceptsTransactions() bool {
	return b.IsPending() || b.IsActive()
}

// Round2 rounds a monetary amount to 2 decimal places
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Participant returns the participant with the given auth id, or nil
func (d *BetDetail) Participant(authID string) *BetParticipant {
	for _, p := range d.Participants {
		if p.AuthID == authID {
			return p
		}
	}
	return nil
}

// AllAccepted checks whether every participant has accepted the bet
func (d *BetDetail) AllAccepted() bool {
	for _, p := range d.Participants {
		if !p.Accepted {
			return false
		}
	}
	return true
}

// ReconcileStatus applies the automatic pending -> active transition: once
// every participant has accepted, the bet activates. Returns true when the
// status changed so callers persist only on actual transitions.
func (d *BetDetail) ReconcileStatus(now time.Time) bool {
	if !d.Bet.IsPending() || !d.AllAccepted() {
		return false
	}
	d.Bet.Status = BetStatusActive
	if d.Bet.ActivatedAt == nil {
		activatedAt := now
		d.Bet.ActivatedAt = &activatedAt
	}
	return true
}

// RecomputeSpending overwrites every participant's cached spending with the
// exact 2-decimal sum of their ledger entries, reconciling any drift from
// incremental updates.
func (d *BetDetail) RecomputeSpending() {
	totals := make(map[string]float64, len(d.Participants))
	for _, txn := range d.Transactions {
		totals[txn.AuthID] += txn.Amount
	}
	for _, p := range d.Participants {
		p.Spending = Round2(totals[p.AuthID])
	}
}

// PickWinner selects the participant with the minimum spending total.
// Ties resolve to the participant listed first in stored order.
// Returns nil when the bet has no participants.
func (d *BetDetail) PickWinner() *BetParticipant {
	var winner *BetParticipant
	for _, p := range d.Participants {
		if winner == nil || p.Spending < winner.Spending {
			winner = p
		}
	}
	return winner
}
