package repository

import (
	"context"
	"fmt"

	"budgetbet/database"
	"budgetbet/models"

	"github.com/jackc/pgx/v5"
)

// GroupRepository implements the service.GroupRepository interface
type GroupRepository struct {
	q queryable
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *database.DB) *GroupRepository {
	return &GroupRepository{q: db.Pool}
}

// newGroupRepositoryWithTx creates a new group repository with a transaction
func newGroupRepositoryWithTx(tx queryable) *GroupRepository {
	return &GroupRepository{q: tx}
}

// Create inserts a group and its initial member set atomically
func (r *GroupRepository) Create(ctx context.Context, group *models.Group, memberAuthIDs []string) error {
	query := `
		INSERT INTO groups (name, owner_auth_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, group.Name, group.OwnerAuthID).
		Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	for _, authID := range memberAuthIDs {
		memberQuery := `
			INSERT INTO group_members (group_id, auth_id)
			VALUES ($1, $2)
			ON CONFLICT (group_id, auth_id) DO NOTHING
		`
		if _, err := r.q.Exec(ctx, memberQuery, group.ID, authID); err != nil {
			return fmt.Errorf("failed to add group member %s: %w", authID, err)
		}
	}

	return nil
}

// GetByID retrieves a group by its ID
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	query := `
		SELECT id, name, owner_auth_id, created_at, updated_at
		FROM groups
		WHERE id = $1
	`

	var group models.Group
	err := r.q.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.OwnerAuthID,
		&group.CreatedAt,
		&group.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group %d: %w", id, err)
	}
	return &group, nil
}

// GetMemberAuthIDs returns the member auth ids of a group in stored order
func (r *GroupRepository) GetMemberAuthIDs(ctx context.Context, groupID int64) ([]string, error) {
	query := `
		SELECT auth_id
		FROM group_members
		WHERE group_id = $1
		ORDER BY added_at, auth_id
	`

	rows, err := r.q.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	var authIDs []string
	for rows.Next() {
		var authID string
		if err := rows.Scan(&authID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		authIDs = append(authIDs, authID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return authIDs, nil
}

// AddMember adds an auth id to the member set. Adding an existing member is
// a no-op; the group's updated_at is bumped either way.
func (r *GroupRepository) AddMember(ctx context.Context, groupID int64, authID string) error {
	memberQuery := `
		INSERT INTO group_members (group_id, auth_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, auth_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, memberQuery, groupID, authID); err != nil {
		return fmt.Errorf("failed to add member %s to group %d: %w", authID, groupID, err)
	}

	touchQuery := `
		UPDATE groups
		SET updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, touchQuery, groupID)
	if err != nil {
		return fmt.Errorf("failed to touch group %d: %w", groupID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("group %d not found", groupID)
	}
	return nil
}

// GetByMember returns groups the user belongs to, most recently updated first
func (r *GroupRepository) GetByMember(ctx context.Context, authID string) ([]*models.Group, error) {
	query := `
		SELECT g.id, g.name, g.owner_auth_id, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.auth_id = $1
		ORDER BY g.updated_at DESC
	`

	rows, err := r.q.Query(ctx, query, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for member %s: %w", authID, err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var group models.Group
		err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.OwnerAuthID,
			&group.CreatedAt,
			&group.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}
