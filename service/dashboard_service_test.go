package service

import (
	"context"
	"testing"

	"budgetbet/models"

	"github.com/stretchr/testify/assert"
)

func TestDashboardService_BuildDashboard(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockGroupRepo := new(MockGroupRepository)
	mockBetRepo := new(MockBetRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockUserRepo, mockGroupRepo, mockBetRepo, mockTxnRepo, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	svc := NewDashboardService(mockFactory)

	mockUserRepo.On("GetByAuthID", ctx, "alice").Return(&models.User{AuthID: "alice", Username: "alice"}, nil)

	mockGroupRepo.On("GetByMember", ctx, "alice").Return([]*models.Group{{ID: 1, Name: "Roomies"}}, nil)
	mockGroupRepo.On("GetMemberAuthIDs", ctx, int64(1)).Return([]string{"alice", "bob"}, nil)
	mockUserRepo.On("GetPublicByAuthIDs", ctx, []string{"alice", "bob"}).Return([]models.UserPublic{
		{AuthID: "alice"}, {AuthID: "bob"},
	}, nil)

	activeBet := &models.Bet{ID: 10, GroupID: 1, Status: models.BetStatusActive}
	completedBet := &models.Bet{ID: 9, GroupID: 1, Status: models.BetStatusCompleted}
	mockBetRepo.On("GetByParticipantAndStatus", ctx, "alice",
		[]models.BetStatus{models.BetStatusPending, models.BetStatusActive}).Return([]*models.Bet{activeBet}, nil)
	mockBetRepo.On("GetByParticipantAndStatus", ctx, "alice",
		[]models.BetStatus{models.BetStatusCompleted}).Return([]*models.Bet{completedBet}, nil)

	mockBetRepo.On("GetParticipants", ctx, int64(10)).Return([]*models.BetParticipant{{AuthID: "alice"}}, nil)
	mockBetRepo.On("GetParticipants", ctx, int64(9)).Return([]*models.BetParticipant{{AuthID: "alice"}}, nil)
	mockTxnRepo.On("ListByBet", ctx, int64(10)).Return([]*models.Transaction{}, nil)
	mockTxnRepo.On("ListByBet", ctx, int64(9)).Return([]*models.Transaction{{BetID: 9, AuthID: "alice", Amount: 12.50}}, nil)

	dashboard, err := svc.BuildDashboard(ctx, "alice")

	assert.NoError(t, err)
	assert.Equal(t, "alice", dashboard.User.AuthID)
	assert.Len(t, dashboard.Groups, 1)
	assert.Len(t, dashboard.ActiveBets, 1)
	assert.Len(t, dashboard.CompletedBets, 1)
	assert.Len(t, dashboard.CompletedBets[0].Transactions, 1)
}

func TestDashboardService_BuildDashboard_UnknownUser(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	svc := NewDashboardService(mockFactory)

	mockUserRepo.On("GetByAuthID", ctx, "ghost").Return(nil, nil)

	_, err := svc.BuildDashboard(ctx, "ghost")

	assert.True(t, IsKind(err, KindNotFound))
}
