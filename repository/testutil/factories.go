package testutil

import (
	"fmt"
	"time"

	"budgetbet/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(authID, username string) *models.User {
	return &models.User{
		AuthID:      authID,
		Email:       fmt.Sprintf("%s@example.com", username),
		Username:    username,
		DisplayName: username,
	}
}

// CreateTestGroup creates a test group owned by the given user
func CreateTestGroup(name, ownerAuthID string) *models.Group {
	return &models.Group{
		Name:        name,
		OwnerAuthID: ownerAuthID,
	}
}

// CreateTestBet creates a pending test bet with sane defaults
func CreateTestBet(groupID int64, createdBy string) *models.Bet {
	return &models.Bet{
		GroupID:     groupID,
		CreatedBy:   createdBy,
		Title:       "Lowest spender wins",
		Description: "Keep the food budget under control",
		BudgetLimit: 150,
		Deadline:    time.Now().Add(14 * 24 * time.Hour),
		Status:      models.BetStatusPending,
	}
}

// CreateTestParticipant creates a participant row for a bet
func CreateTestParticipant(authID string, accepted bool) *models.BetParticipant {
	return &models.BetParticipant{
		AuthID:      authID,
		Username:    authID,
		DisplayName: authID,
		Accepted:    accepted,
	}
}

// CreateTestTransaction creates a spending entry for a bet participant
func CreateTestTransaction(betID int64, authID string, amount float64) *models.Transaction {
	return &models.Transaction{
		BetID:      betID,
		AuthID:     authID,
		Amount:     amount,
		Merchant:   "Corner Cafe",
		Category:   "food",
		OccurredOn: time.Now(),
	}
}
