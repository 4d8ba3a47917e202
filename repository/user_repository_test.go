package repository

import (
	"context"
	"testing"

	"budgetbet/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	alice := testutil.CreateTestUser("auth-alice", "Alice")
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotZero(t, alice.ID)

	t.Run("by auth id", func(t *testing.T) {
		got, err := repo.GetByAuthID(ctx, "auth-alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Alice", got.Username)
		assert.Equal(t, "Alice@example.com", got.Email)
	})

	t.Run("by username is case-insensitive", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "ALICE")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "auth-alice", got.AuthID)
	})

	t.Run("unknown user returns nil", func(t *testing.T) {
		got, err := repo.GetByAuthID(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUserRepository_UsernameTaken(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestUser("auth-alice", "Alice")))

	taken, err := repo.UsernameTaken(ctx, "alice", "auth-bob")
	require.NoError(t, err)
	assert.True(t, taken)

	// A user's own username does not count against them
	taken, err = repo.UsernameTaken(ctx, "ALICE", "auth-alice")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.UsernameTaken(ctx, "unclaimed", "auth-bob")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("auth-alice", "alice")
	require.NoError(t, repo.Create(ctx, user))

	user.Username = "alice2"
	user.DisplayName = "Alice B."
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByAuthID(ctx, "auth-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, "Alice B.", got.DisplayName)

	// The old username is released
	old, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, old)
}

func TestUserRepository_SearchByUsernamePrefix(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	for _, username := range []string{"alice", "Alan", "bob"} {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestUser("auth-"+username, username)))
	}

	results, err := repo.SearchByUsernamePrefix(ctx, "AL", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Alan", results[0].Username)
	assert.Equal(t, "alice", results[1].Username)

	limited, err := repo.SearchByUsernamePrefix(ctx, "al", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUserRepository_SearchTreatsWildcardsLiterally(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	for _, username := range []string{"alice", "a_b"} {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestUser("auth-"+username, username)))
	}

	results, err := repo.SearchByUsernamePrefix(ctx, "a_", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a_b", results[0].Username)

	results, err = repo.SearchByUsernamePrefix(ctx, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUserRepository_GetPublicByAuthIDs(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestUser("auth-alice", "alice")))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestUser("auth-bob", "bob")))

	t.Run("preserves input order and skips unknowns", func(t *testing.T) {
		users, err := repo.GetPublicByAuthIDs(ctx, []string{"auth-bob", "ghost", "auth-alice"})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "auth-bob", users[0].AuthID)
		assert.Equal(t, "auth-alice", users[1].AuthID)
	})

	t.Run("empty input", func(t *testing.T) {
		users, err := repo.GetPublicByAuthIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}
