package repository

import (
	"context"
	"fmt"

	"budgetbet/database"
	"budgetbet/models"
)

// PlaidItemRepository implements the service.PlaidItemRepository interface
type PlaidItemRepository struct {
	q queryable
}

// NewPlaidItemRepository creates a new plaid item repository
func NewPlaidItemRepository(db *database.DB) *PlaidItemRepository {
	return &PlaidItemRepository{q: db.Pool}
}

// newPlaidItemRepositoryWithTx creates a new plaid item repository with a transaction
func newPlaidItemRepositoryWithTx(tx queryable) *PlaidItemRepository {
	return &PlaidItemRepository{q: tx}
}

// Upsert creates or refreshes an item keyed by its provider item id
func (r *PlaidItemRepository) Upsert(ctx context.Context, item *models.PlaidItem) error {
	query := `
		INSERT INTO plaid_items (auth_id, item_id, access_token, institution_name)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		ON CONFLICT (item_id) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    institution_name = COALESCE(EXCLUDED.institution_name, plaid_items.institution_name),
		    updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		item.AuthID,
		item.ItemID,
		item.AccessToken,
		item.InstitutionName,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert plaid item %s: %w", item.ItemID, err)
	}
	return nil
}

// GetByAuthID returns all items linked by a user
func (r *PlaidItemRepository) GetByAuthID(ctx context.Context, authID string) ([]*models.PlaidItem, error) {
	query := `
		SELECT id, auth_id, item_id, access_token, COALESCE(institution_name, ''), created_at, updated_at
		FROM plaid_items
		WHERE auth_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plaid items for user %s: %w", authID, err)
	}
	defer rows.Close()

	var items []*models.PlaidItem
	for rows.Next() {
		var item models.PlaidItem
		err := rows.Scan(
			&item.ID,
			&item.AuthID,
			&item.ItemID,
			&item.AccessToken,
			&item.InstitutionName,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plaid item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plaid items: %w", err)
	}
	return items, nil
}
