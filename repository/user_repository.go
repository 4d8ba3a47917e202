package repository

import (
	"context"
	"fmt"
	"strings"

	"budgetbet/database"
	"budgetbet/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `
	id, auth_id, email,
	COALESCE(username, ''), COALESCE(display_name, ''), COALESCE(photo_url, ''),
	created_at, updated_at
`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.AuthID,
		&user.Email,
		&user.Username,
		&user.DisplayName,
		&user.PhotoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAuthID retrieves a user by their external auth identifier
func (r *UserRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, authID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by auth ID %s: %w", authID, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by case-insensitive username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username_lower = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(username))))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return user, nil
}

// Create inserts a new user record
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (auth_id, email, username, username_lower, display_name, photo_url)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF(LOWER($3), ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.AuthID,
		user.Email,
		user.Username,
		user.DisplayName,
		user.PhotoURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.AuthID, err)
	}
	return nil
}

// Update overwrites the mutable profile fields of a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, username = NULLIF($3, ''), username_lower = NULLIF(LOWER($3), ''),
		    display_name = NULLIF($4, ''), photo_url = NULLIF($5, ''),
		    updated_at = CURRENT_TIMESTAMP
		WHERE auth_id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.AuthID,
		user.Email,
		user.Username,
		user.DisplayName,
		user.PhotoURL,
	).Scan(&user.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("user %s not found", user.AuthID)
	}
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.AuthID, err)
	}
	return nil
}

// UsernameTaken checks whether another user already holds the username
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeAuthID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE username_lower = $1 AND auth_id <> $2
		)
	`

	var taken bool
	err := r.q.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(username)), excludeAuthID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check username %s: %w", username, err)
	}
	return taken, nil
}

// likeEscaper neutralizes LIKE metacharacters so a prefix matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByUsernamePrefix returns users whose username starts with the prefix.
// The prefix is matched literally, `%` and `_` carry no wildcard meaning.
func (r *UserRepository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username_lower LIKE $1 || '%' ESCAPE '\'
		ORDER BY username_lower
		LIMIT $2
	`

	pattern := likeEscaper.Replace(strings.ToLower(strings.TrimSpace(prefix)))
	rows, err := r.q.Query(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// GetPublicByAuthIDs returns public profiles for the given auth ids.
// Auth ids with no directory record are skipped. Result order follows the
// input order.
func (r *UserRepository) GetPublicByAuthIDs(ctx context.Context, authIDs []string) ([]models.UserPublic, error) {
	if len(authIDs) == 0 {
		return []models.UserPublic{}, nil
	}

	query := `
		SELECT auth_id, COALESCE(username, ''), COALESCE(display_name, ''), COALESCE(photo_url, '')
		FROM users
		WHERE auth_id = ANY($1)
	`

	rows, err := r.q.Query(ctx, query, authIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get public users: %w", err)
	}
	defer rows.Close()

	byAuthID := make(map[string]models.UserPublic, len(authIDs))
	for rows.Next() {
		var user models.UserPublic
		if err := rows.Scan(&user.AuthID, &user.Username, &user.DisplayName, &user.PhotoURL); err != nil {
			return nil, fmt.Errorf("failed to scan public user: %w", err)
		}
		byAuthID[user.AuthID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate public users: %w", err)
	}

	users := make([]models.UserPublic, 0, len(byAuthID))
	for _, authID := range authIDs {
		if user, ok := byAuthID[authID]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}
