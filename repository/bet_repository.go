package repository

import (
	"context"
	"fmt"

	"budgetbet/database"
	"budgetbet/models"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `
	id, group_id, created_by, title, COALESCE(description, ''),
	budget_limit, deadline, status, winner_auth_id,
	created_at, updated_at, activated_at, completed_at
`

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.GroupID,
		&bet.CreatedBy,
		&bet.Title,
		&bet.Description,
		&bet.BudgetLimit,
		&bet.Deadline,
		&bet.Status,
		&bet.WinnerAuthID,
		&bet.CreatedAt,
		&bet.UpdatedAt,
		&bet.ActivatedAt,
		&bet.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// CreateWithParticipants creates a bet and its participant rows atomically
func (r *BetRepository) CreateWithParticipants(ctx context.Context, bet *models.Bet, participants []*models.BetParticipant) error {
	query := `
		INSERT INTO bets (
			group_id, created_by, title, description, budget_limit,
			deadline, status, activated_at
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.GroupID,
		bet.CreatedBy,
		bet.Title,
		bet.Description,
		bet.BudgetLimit,
		bet.Deadline,
		bet.Status,
		bet.ActivatedAt,
	).Scan(&bet.ID, &bet.CreatedAt, &bet.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	// Insert one at a time so participant ids preserve the given order;
	// that order is the settlement tie-break order.
	participantQuery := `
		INSERT INTO bet_participants (
			bet_id, auth_id, username, display_name, photo_url, accepted, spending
		)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING id, created_at, updated_at
	`
	for _, p := range participants {
		p.BetID = bet.ID
		err := r.q.QueryRow(ctx, participantQuery,
			bet.ID,
			p.AuthID,
			p.Username,
			p.DisplayName,
			p.PhotoURL,
			p.Accepted,
			p.Spending,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create bet participant %s: %w", p.AuthID, err)
		}
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}
	return bet, nil
}

// GetByIDForUpdate retrieves a bet and locks its row until the surrounding
// transaction ends, serializing concurrent mutations of the same bet.
func (r *BetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1 FOR UPDATE`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock bet %d: %w", id, err)
	}
	return bet, nil
}

// Update persists a bet's status and settlement fields
func (r *BetRepository) Update(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets
		SET status = $2, winner_auth_id = $3, activated_at = $4,
		    completed_at = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.ID,
		bet.Status,
		bet.WinnerAuthID,
		bet.ActivatedAt,
		bet.CompletedAt,
	).Scan(&bet.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("bet %d not found", bet.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update bet %d: %w", bet.ID, err)
	}
	return nil
}

// GetParticipants returns a bet's participants in stored order
func (r *BetRepository) GetParticipants(ctx context.Context, betID int64) ([]*models.BetParticipant, error) {
	query := `
		SELECT
			id, bet_id, auth_id, COALESCE(username, ''),
			COALESCE(display_name, ''), COALESCE(photo_url, ''),
			accepted, spending, created_at, updated_at
		FROM bet_participants
		WHERE bet_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.BetParticipant
	for rows.Next() {
		var p models.BetParticipant
		err := rows.Scan(
			&p.ID,
			&p.BetID,
			&p.AuthID,
			&p.Username,
			&p.DisplayName,
			&p.PhotoURL,
			&p.Accepted,
			&p.Spending,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet participant: %w", err)
		}
		participants = append(participants, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bet participants: %w", err)
	}
	return participants, nil
}

// UpdateParticipant persists a participant's accepted flag and spending
func (r *BetRepository) UpdateParticipant(ctx context.Context, participant *models.BetParticipant) error {
	query := `
		UPDATE bet_participants
		SET accepted = $2, spending = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		participant.ID,
		participant.Accepted,
		participant.Spending,
	).Scan(&participant.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("bet participant %d not found", participant.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update bet participant %d: %w", participant.ID, err)
	}
	return nil
}

// UpdateParticipantSpendings persists spending for multiple participants
func (r *BetRepository) UpdateParticipantSpendings(ctx context.Context, participants []*models.BetParticipant) error {
	for _, p := range participants {
		query := `
			UPDATE bet_participants
			SET spending = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
		`
		if _, err := r.q.Exec(ctx, query, p.ID, p.Spending); err != nil {
			return fmt.Errorf("failed to update spending for participant %d: %w", p.ID, err)
		}
	}
	return nil
}

// GetByGroup returns bets for a group, newest first
func (r *BetRepository) GetByGroup(ctx context.Context, groupID int64) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE group_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets for group %d: %w", groupID, err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// GetByParticipantAndStatus returns bets where the user participates,
// filtered by status. Active statuses sort by nearest deadline first,
// completed by most recent completion first.
func (r *BetRepository) GetByParticipantAndStatus(ctx context.Context, authID string, statuses []models.BetStatus) ([]*models.Bet, error) {
	orderBy := "b.deadline ASC"
	if len(statuses) == 1 && statuses[0] == models.BetStatusCompleted {
		orderBy = "b.completed_at DESC"
	}

	query := `
		SELECT
			b.id, b.group_id, b.created_by, b.title, COALESCE(b.description, ''),
			b.budget_limit, b.deadline, b.status, b.winner_auth_id,
			b.created_at, b.updated_at, b.activated_at, b.completed_at
		FROM bets b
		JOIN bet_participants bp ON bp.bet_id = b.id
		WHERE bp.auth_id = $1 AND b.status = ANY($2)
		ORDER BY ` + orderBy

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := r.q.Query(ctx, query, authID, statusStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets for participant %s: %w", authID, err)
	}
	defer rows.Close()

	return collectBets(rows)
}

func collectBets(rows pgx.Rows) ([]*models.Bet, error) {
	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}
