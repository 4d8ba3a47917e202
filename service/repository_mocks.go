package service

import (
	"context"

	"budgetbet/events"
	"budgetbet/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	args := m.Called(ctx, authID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UsernameTaken(ctx context.Context, username string, excludeAuthID string) (bool, error) {
	args := m.Called(ctx, username, excludeAuthID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	args := m.Called(ctx, prefix, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetPublicByAuthIDs(ctx context.Context, authIDs []string) ([]models.UserPublic, error) {
	args := m.Called(ctx, authIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserPublic), args.Error(1)
}

// MockGroupRepository is a mock implementation of GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *models.Group, memberAuthIDs []string) error {
	args := m.Called(ctx, group, memberAuthIDs)
	return args.Error(0)
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupRepository) GetMemberAuthIDs(ctx context.Context, groupID int64) ([]string, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGroupRepository) AddMember(ctx context.Context, groupID int64, authID string) error {
	args := m.Called(ctx, groupID, authID)
	return args.Error(0)
}

func (m *MockGroupRepository) GetByMember(ctx context.Context, authID string) ([]*models.Group, error) {
	args := m.Called(ctx, authID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) CreateWithParticipants(ctx context.Context, bet *models.Bet, participants []*models.BetParticipant) error {
	args := m.Called(ctx, bet, participants)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) Update(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetParticipants(ctx context.Context, betID int64) ([]*models.BetParticipant, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetParticipant), args.Error(1)
}

func (m *MockBetRepository) UpdateParticipant(ctx context.Context, participant *models.BetParticipant) error {
	args := m.Called(ctx, participant)
	return args.Error(0)
}

func (m *MockBetRepository) UpdateParticipantSpendings(ctx context.Context, participants []*models.BetParticipant) error {
	args := m.Called(ctx, participants)
	return args.Error(0)
}

func (m *MockBetRepository) GetByGroup(ctx context.Context, groupID int64) ([]*models.Bet, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByParticipantAndStatus(ctx context.Context, authID string, statuses []models.BetStatus) ([]*models.Bet, error) {
	args := m.Called(ctx, authID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByBet(ctx context.Context, betID int64) ([]*models.Transaction, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, authID string) ([]*models.Transaction, error) {
	args := m.Called(ctx, authID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

// MockPlaidItemRepository is a mock implementation of PlaidItemRepository
type MockPlaidItemRepository struct {
	mock.Mock
}

func (m *MockPlaidItemRepository) Upsert(ctx context.Context, item *models.PlaidItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockPlaidItemRepository) GetByAuthID(ctx context.Context, authID string) ([]*models.PlaidItem, error) {
	args := m.Called(ctx, authID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlaidItem), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// RecordingEventPublisher collects published events for assertion without
// expectation bookkeeping.
type RecordingEventPublisher struct {
	Events []events.Event
}

func (p *RecordingEventPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return the instances set via SetRepositories rather than going through
// expectation matching.
type MockUnitOfWork struct {
	mock.Mock

	userRepo      UserRepository
	groupRepo     GroupRepository
	betRepo       BetRepository
	txnRepo       TransactionRepository
	plaidItemRepo PlaidItemRepository
	eventBus      EventPublisher
}

// SetRepositories wires the repositories the getters return; nil is fine
// for repositories the test never touches.
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	groupRepo GroupRepository,
	betRepo BetRepository,
	txnRepo TransactionRepository,
	plaidItemRepo PlaidItemRepository,
) {
	m.userRepo = userRepo
	m.groupRepo = groupRepo
	m.betRepo = betRepo
	m.txnRepo = txnRepo
	m.plaidItemRepo = plaidItemRepo
}

// SetEventBus wires the publisher EventBus returns
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) GroupRepository() GroupRepository {
	return m.groupRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.txnRepo
}

func (m *MockUnitOfWork) PlaidItemRepository() PlaidItemRepository {
	return m.plaidItemRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return &RecordingEventPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
