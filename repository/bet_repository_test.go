package repository

import (
	"context"
	"testing"

	"budgetbet/models"
	"budgetbet/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedGroup creates two users and a group containing both
func seedGroup(t *testing.T, testDB *testutil.TestDatabase) *models.Group {
	ctx := context.Background()
	userRepo := NewUserRepository(testDB.DB)
	groupRepo := NewGroupRepository(testDB.DB)

	alice := testutil.CreateTestUser("alice", "alice")
	bob := testutil.CreateTestUser("bob", "bob")
	require.NoError(t, userRepo.Create(ctx, alice))
	require.NoError(t, userRepo.Create(ctx, bob))

	group := testutil.CreateTestGroup("Roomies", "alice")
	require.NoError(t, groupRepo.Create(ctx, group, []string{"alice", "bob"}))
	return group
}

func TestBetRepository_CreateWithParticipants(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	group := seedGroup(t, testDB)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestBet(group.ID, "alice")
	participants := []*models.BetParticipant{
		testutil.CreateTestParticipant("alice", true),
		testutil.CreateTestParticipant("bob", false),
	}

	err := repo.CreateWithParticipants(ctx, bet, participants)
	require.NoError(t, err)
	assert.NotZero(t, bet.ID)

	t.Run("participants keep insertion order", func(t *testing.T) {
		got, err := repo.GetParticipants(ctx, bet.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "alice", got[0].AuthID)
		assert.True(t, got[0].Accepted)
		assert.Equal(t, "bob", got[1].AuthID)
		assert.False(t, got[1].Accepted)
		assert.Less(t, got[0].ID, got[1].ID)
	})

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, bet.Title, got.Title)
		assert.Equal(t, bet.Description, got.Description)
		assert.Equal(t, 150.0, got.BudgetLimit)
		assert.Equal(t, models.BetStatusPending, got.Status)
		assert.Nil(t, got.WinnerAuthID)
	})

	t.Run("missing bet returns nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestBetRepository_UpdateLifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	group := seedGroup(t, testDB)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestBet(group.ID, "alice")
	participants := []*models.BetParticipant{
		testutil.CreateTestParticipant("alice", true),
		testutil.CreateTestParticipant("bob", false),
	}
	require.NoError(t, repo.CreateWithParticipants(ctx, bet, participants))

	t.Run("accept participant", func(t *testing.T) {
		participants[1].Accepted = true
		require.NoError(t, repo.UpdateParticipant(ctx, participants[1]))

		got, err := repo.GetParticipants(ctx, bet.ID)
		require.NoError(t, err)
		assert.True(t, got[1].Accepted)
	})

	t.Run("complete with winner", func(t *testing.T) {
		winner := "bob"
		bet.Status = models.BetStatusCompleted
		bet.WinnerAuthID = &winner
		require.NoError(t, repo.Update(ctx, bet))

		got, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BetStatusCompleted, got.Status)
		require.NotNil(t, got.WinnerAuthID)
		assert.Equal(t, "bob", *got.WinnerAuthID)
	})

	t.Run("spending batch update", func(t *testing.T) {
		participants[0].Spending = 30.35
		participants[1].Spending = 45
		require.NoError(t, repo.UpdateParticipantSpendings(ctx, participants))

		got, err := repo.GetParticipants(ctx, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, 30.35, got[0].Spending)
		assert.Equal(t, 45.0, got[1].Spending)
	})
}

func TestBetRepository_GetByParticipantAndStatus(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	group := seedGroup(t, testDB)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	mkBet := func(title string, status models.BetStatus) *models.Bet {
		bet := testutil.CreateTestBet(group.ID, "alice")
		bet.Title = title
		bet.Status = status
		require.NoError(t, repo.CreateWithParticipants(ctx, bet, []*models.BetParticipant{
			testutil.CreateTestParticipant("alice", true),
		}))
		return bet
	}

	pending := mkBet("pending one", models.BetStatusPending)
	active := mkBet("active one", models.BetStatusActive)
	completed := mkBet("completed one", models.BetStatusActive)
	completed.Status = models.BetStatusCompleted
	require.NoError(t, repo.Update(ctx, completed))

	t.Run("in-flight statuses", func(t *testing.T) {
		bets, err := repo.GetByParticipantAndStatus(ctx, "alice",
			[]models.BetStatus{models.BetStatusPending, models.BetStatusActive})
		require.NoError(t, err)
		require.Len(t, bets, 2)
		ids := []int64{bets[0].ID, bets[1].ID}
		assert.Contains(t, ids, pending.ID)
		assert.Contains(t, ids, active.ID)
	})

	t.Run("completed only", func(t *testing.T) {
		bets, err := repo.GetByParticipantAndStatus(ctx, "alice",
			[]models.BetStatus{models.BetStatusCompleted})
		require.NoError(t, err)
		require.Len(t, bets, 1)
		assert.Equal(t, completed.ID, bets[0].ID)
	})

	t.Run("non-participant sees nothing", func(t *testing.T) {
		bets, err := repo.GetByParticipantAndStatus(ctx, "bob",
			[]models.BetStatus{models.BetStatusPending, models.BetStatusActive})
		require.NoError(t, err)
		assert.Empty(t, bets)
	})
}

func TestTransactionRepository_LedgerOrdering(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	group := seedGroup(t, testDB)

	betRepo := NewBetRepository(testDB.DB)
	txnRepo := NewTransactionRepository(testDB.DB)
	ctx := context.Background()

	bet := testutil.CreateTestBet(group.ID, "alice")
	require.NoError(t, betRepo.CreateWithParticipants(ctx, bet, []*models.BetParticipant{
		testutil.CreateTestParticipant("alice", true),
	}))

	first := testutil.CreateTestTransaction(bet.ID, "alice", 10.10)
	second := testutil.CreateTestTransaction(bet.ID, "alice", 20.25)
	require.NoError(t, txnRepo.Append(ctx, first))
	require.NoError(t, txnRepo.Append(ctx, second))

	t.Run("by bet ascending", func(t *testing.T) {
		ledger, err := txnRepo.ListByBet(ctx, bet.ID)
		require.NoError(t, err)
		require.Len(t, ledger, 2)
		assert.Equal(t, first.ID, ledger[0].ID)
		assert.Equal(t, 10.10, ledger[0].Amount)
		assert.Equal(t, second.ID, ledger[1].ID)
	})

	t.Run("by user descending", func(t *testing.T) {
		ledger, err := txnRepo.ListByUser(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, ledger, 2)
		assert.Equal(t, second.ID, ledger[0].ID)
	})
}
