package service

import (
	"context"
	"time"

	"budgetbet/events"
	"budgetbet/models"
)

// UserRepository defines the interface for user directory data access
type UserRepository interface {
	// GetByAuthID retrieves a user by their external auth identifier
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)

	// GetByUsername retrieves a user by case-insensitive username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create inserts a new user record
	Create(ctx context.Context, user *models.User) error

	// Update overwrites the mutable profile fields of a user
	Update(ctx context.Context, user *models.User) error

	// UsernameTaken checks whether another user already holds the username
	UsernameTaken(ctx context.Context, username string, excludeAuthID string) (bool, error)

	// SearchByUsernamePrefix returns users whose username starts with the
	// prefix, case-insensitive, up to limit
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error)

	// GetPublicByAuthIDs returns public profiles for the given auth ids,
	// skipping ids with no directory record
	GetPublicByAuthIDs(ctx context.Context, authIDs []string) ([]models.UserPublic, error)
}

// GroupRepository defines the interface for group registry data access
type GroupRepository interface {
	// Create inserts a group and its initial member set atomically
	Create(ctx context.Context, group *models.Group, memberAuthIDs []string) error

	// GetByID retrieves a group by its ID
	GetByID(ctx context.Context, id int64) (*models.Group, error)

	// GetMemberAuthIDs returns the member auth ids of a group in stored order
	GetMemberAuthIDs(ctx context.Context, groupID int64) ([]string, error)

	// AddMember adds an auth id to the member set; adding an existing
	// member is a no-op. Bumps the group's updated_at.
	AddMember(ctx context.Context, groupID int64, authID string) error

	// GetByMember returns groups the user belongs to, most recently updated first
	GetByMember(ctx context.Context, authID string) ([]*models.Group, error)
}

// BetRepository defines the interface for bet lifecycle data access
type BetRepository interface {
	// CreateWithParticipants creates a bet and its participant rows atomically
	CreateWithParticipants(ctx context.Context, bet *models.Bet, participants []*models.BetParticipant) error

	// GetByID retrieves a bet by its ID
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetByIDForUpdate retrieves a bet and locks its row for the duration
	// of the transaction, serializing concurrent mutations of one bet
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error)

	// Update persists a bet's status and settlement fields
	Update(ctx context.Context, bet *models.Bet) error

	// GetParticipants returns a bet's participants in stored order
	GetParticipants(ctx context.Context, betID int64) ([]*models.BetParticipant, error)

	// UpdateParticipant persists a participant's accepted flag and spending
	UpdateParticipant(ctx context.Context, participant *models.BetParticipant) error

	// UpdateParticipantSpendings persists spending for multiple participants
	UpdateParticipantSpendings(ctx context.Context, participants []*models.BetParticipant) error

	// GetByGroup returns bets for a group, newest first
	GetByGroup(ctx context.Context, groupID int64) ([]*models.Bet, error)

	// GetByParticipantAndStatus returns bets where the user participates,
	// filtered by status. Ordering follows the dashboard contract: active
	// statuses sort by nearest deadline, completed by most recent completion.
	GetByParticipantAndStatus(ctx context.Context, authID string, statuses []models.BetStatus) ([]*models.Bet, error)
}

// TransactionRepository defines the interface for the append-only spending ledger
type TransactionRepository interface {
	// Append inserts a new immutable spending record
	Append(ctx context.Context, txn *models.Transaction) error

	// ListByBet returns a bet's ledger ordered by occurred_on ascending,
	// insertion order on ties
	ListByBet(ctx context.Context, betID int64) ([]*models.Transaction, error)

	// ListByUser returns a user's ledger ordered by occurred_on descending
	ListByUser(ctx context.Context, authID string) ([]*models.Transaction, error)
}

// PlaidItemRepository defines the interface for linked institution storage
type PlaidItemRepository interface {
	// Upsert creates or refreshes an item keyed by its provider item id
	Upsert(ctx context.Context, item *models.PlaidItem) error

	// GetByAuthID returns all items linked by a user
	GetByAuthID(ctx context.Context, authID string) ([]*models.PlaidItem, error)
}

// UserService defines the interface for user directory operations
type UserService interface {
	// SyncUser upserts a profile keyed by auth id (idempotent)
	SyncUser(ctx context.Context, input SyncUserInput) (*models.User, error)

	// GetUser retrieves a user by auth id
	GetUser(ctx context.Context, authID string) (*models.User, error)

	// UpdateUser applies a partial profile update
	UpdateUser(ctx context.Context, authID string, patch UpdateUserInput) (*models.User, error)

	// SearchUsers performs a case-insensitive username prefix search
	SearchUsers(ctx context.Context, query string) ([]models.UserPublic, error)
}

// SyncUserInput carries the auth-provider profile for an upsert
type SyncUserInput struct {
	AuthID      string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
}

// UpdateUserInput carries a partial profile update; nil fields are untouched
type UpdateUserInput struct {
	Username    *string
	DisplayName *string
	PhotoURL    *string
}

// GroupService defines the interface for group registry operations
type GroupService interface {
	// CreateGroup creates a group with the owner plus resolved members
	CreateGroup(ctx context.Context, name, ownerAuthID string, memberUsernames []string) (*models.GroupDetail, error)

	// GetGroup retrieves a group with hydrated members
	GetGroup(ctx context.Context, groupID int64) (*models.GroupDetail, error)

	// ListGroups returns the user's groups, most recently updated first
	ListGroups(ctx context.Context, authID string) ([]*models.GroupDetail, error)

	// AddMember adds a user to the group by username
	AddMember(ctx context.Context, groupID int64, username string) (*models.GroupDetail, error)
}

// BetService defines the interface for bet lifecycle operations
type BetService interface {
	// CreateBet creates a bet covering every current group member
	CreateBet(ctx context.Context, input CreateBetInput) (*models.BetDetail, error)

	// GetBet retrieves a bet with participants and ledger, reconciling the
	// pending -> active transition when due
	GetBet(ctx context.Context, betID int64) (*models.BetDetail, error)

	// AcceptBet marks a participant's acceptance
	AcceptBet(ctx context.Context, betID int64, authID string) (*models.BetDetail, error)

	// CancelBet cancels a pending bet; creator only
	CancelBet(ctx context.Context, betID int64, authID string) (*models.BetDetail, error)

	// RecordTransaction appends a spending entry and updates cached totals
	RecordTransaction(ctx context.Context, input RecordTransactionInput) (*models.BetDetail, error)

	// FinalizeBet settles the bet: recomputes spending and selects the winner
	FinalizeBet(ctx context.Context, betID int64) (*models.BetDetail, error)

	// ListGroupBets returns a group's bets, newest first, with ledgers
	ListGroupBets(ctx context.Context, groupID int64) ([]*models.BetDetail, error)
}

// CreateBetInput carries the fields for creating a bet
type CreateBetInput struct {
	GroupID     int64
	CreatedBy   string
	Title       string
	Description string
	BudgetLimit float64
	Deadline    time.Time
}

// RecordTransactionInput carries the fields for appending a spending entry
type RecordTransactionInput struct {
	BetID      int64
	AuthID     string
	Amount     float64
	Merchant   string
	Category   string
	OccurredOn time.Time
}

// DashboardService defines the interface for the composed user view
type DashboardService interface {
	// BuildDashboard composes profile, groups and bet lists for one user
	BuildDashboard(ctx context.Context, authID string) (*models.Dashboard, error)
}

// PlaidService defines the interface for the financial-data integration
type PlaidService interface {
	// CreateLinkToken issues a provider link token for the user
	CreateLinkToken(ctx context.Context, authID string) (string, error)

	// ExchangePublicToken trades a public token for an access token and
	// stores the linked item
	ExchangePublicToken(ctx context.Context, authID, publicToken, institutionName string) (*models.PlaidItem, error)

	// FetchTransactions retrieves provider transactions for all linked
	// items of a user within a date range
	FetchTransactions(ctx context.Context, authID string, start, end time.Time) ([]ProviderTransaction, error)

	// IngestedTransactions returns the stored ledger feed for a user,
	// most recent first
	IngestedTransactions(ctx context.Context, authID string) ([]*models.Transaction, error)
}

// ProviderTransaction is one transaction row from the financial-data provider
type ProviderTransaction struct {
	TransactionID string  `json:"transaction_id"`
	AccountID     string  `json:"account_id"`
	Name          string  `json:"name"`
	MerchantName  string  `json:"merchant_name,omitempty"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Category      string  `json:"category,omitempty"`
	Pending       bool    `json:"pending"`
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	GroupRepository() GroupRepository
	BetRepository() BetRepository
	TransactionRepository() TransactionRepository
	PlaidItemRepository() PlaidItemRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a new UnitOfWork
	Create() UnitOfWork
}
