package service

import (
	"context"
	"fmt"
	"strings"

	"budgetbet/events"
	"budgetbet/models"
)

// minSearchQueryLength is the minimum number of significant characters
// before a username search hits the directory.
const minSearchQueryLength = 2

// searchResultLimit caps username prefix search results.
const searchResultLimit = 10

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// SyncUser upserts a profile keyed by auth id. Called after every sign-in,
// so it must be idempotent.
func (s *userService) SyncUser(ctx context.Context, input SyncUserInput) (*models.User, error) {
	if input.AuthID == "" {
		return nil, InvalidInputError("auth id is required")
	}
	if input.Email == "" {
		return nil, InvalidInputError("email is required")
	}

	username := models.NormalizeUsername(input.Username)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if username != "" {
		taken, err := uow.UserRepository().UsernameTaken(ctx, username, input.AuthID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, InvalidInputError("username %q is already taken", username)
		}
	}

	existing, err := uow.UserRepository().GetByAuthID(ctx, input.AuthID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := &models.User{
		AuthID:      input.AuthID,
		Email:       input.Email,
		Username:    username,
		DisplayName: input.DisplayName,
		PhotoURL:    input.PhotoURL,
	}
	if user.DisplayName == "" {
		user.DisplayName = models.DefaultDisplayName(username, input.Email)
	}

	created := existing == nil
	if created {
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		if user.Username == "" {
			user.Username = existing.Username
		}
		if user.PhotoURL == "" {
			user.PhotoURL = existing.PhotoURL
		}
		if err := uow.UserRepository().Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	uow.EventBus().Publish(events.UserSyncedEvent{
		AuthID:  user.AuthID,
		Email:   user.Email,
		Created: created,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by auth id
func (s *userService) GetUser(ctx context.Context, authID string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByAuthID(ctx, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, NotFoundError("user %s not found", authID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// UpdateUser applies a partial profile update
func (s *userService) UpdateUser(ctx context.Context, authID string, patch UpdateUserInput) (*models.User, error) {
	if patch.Username == nil && patch.DisplayName == nil && patch.PhotoURL == nil {
		return nil, InvalidInputError("no updates provided")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByAuthID(ctx, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, NotFoundError("user %s not found", authID)
	}

	if patch.Username != nil {
		username := models.NormalizeUsername(*patch.Username)
		if username == "" {
			return nil, InvalidInputError("username cannot be empty")
		}
		taken, err := uow.UserRepository().UsernameTaken(ctx, username, authID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, InvalidInputError("username %q is already taken", username)
		}
		user.Username = username
	}
	if patch.DisplayName != nil {
		user.DisplayName = *patch.DisplayName
	}
	if patch.PhotoURL != nil {
		user.PhotoURL = *patch.PhotoURL
	}

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// SearchUsers performs a case-insensitive username prefix search. Queries
// shorter than two significant characters return an empty result.
func (s *userService) SearchUsers(ctx context.Context, query string) ([]models.UserPublic, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchQueryLength {
		return []models.UserPublic{}, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().SearchByUsernamePrefix(ctx, query, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	results := make([]models.UserPublic, 0, len(users))
	for _, user := range users {
		results = append(results, user.Public())
	}
	return results, nil
}
