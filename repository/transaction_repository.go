package repository

import (
	"context"
	"fmt"

	"budgetbet/database"
	"budgetbet/models"

	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the service.TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Append inserts a new immutable spending record
func (r *TransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (bet_id, auth_id, amount, merchant, category, occurred_on)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.BetID,
		txn.AuthID,
		txn.Amount,
		txn.Merchant,
		txn.Category,
		txn.OccurredOn,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// ListByBet returns a bet's ledger ordered by occurred_on ascending,
// insertion order on ties
func (r *TransactionRepository) ListByBet(ctx context.Context, betID int64) ([]*models.Transaction, error) {
	query := `
		SELECT id, bet_id, auth_id, amount, merchant, COALESCE(category, ''), occurred_on, created_at
		FROM transactions
		WHERE bet_id = $1
		ORDER BY occurred_on ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for bet %d: %w", betID, err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByUser returns a user's ledger ordered by occurred_on descending
func (r *TransactionRepository) ListByUser(ctx context.Context, authID string) ([]*models.Transaction, error) {
	query := `
		SELECT id, bet_id, auth_id, amount, merchant, COALESCE(category, ''), occurred_on, created_at
		FROM transactions
		WHERE auth_id = $1
		ORDER BY occurred_on DESC, id DESC
	`

	rows, err := r.q.Query(ctx, query, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %s: %w", authID, err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.BetID,
			&txn.AuthID,
			&txn.Amount,
			&txn.Merchant,
			&txn.Category,
			&txn.OccurredOn,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
