package service

import (
	"context"
	"fmt"
	"strings"

	"budgetbet/models"
)

type groupService struct {
	uowFactory UnitOfWorkFactory
}

// NewGroupService creates a new group service
func NewGroupService(uowFactory UnitOfWorkFactory) GroupService {
	return &groupService{
		uowFactory: uowFactory,
	}
}

// CreateGroup creates a group owned by ownerAuthID. Usernames that resolve
// to directory users become members; the owner is always included exactly
// once regardless of the username list.
func (s *groupService) CreateGroup(ctx context.Context, name, ownerAuthID string, memberUsernames []string) (*models.GroupDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, InvalidInputError("group name cannot be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owner, err := uow.UserRepository().GetByAuthID(ctx, ownerAuthID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	if owner == nil {
		return nil, NotFoundError("user %s not found", ownerAuthID)
	}

	memberAuthIDs := []string{ownerAuthID}
	seen := map[string]bool{ownerAuthID: true}
	for _, username := range memberUsernames {
		username = models.NormalizeUsername(username)
		if username == "" {
			continue
		}
		member, err := uow.UserRepository().GetByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve member %q: %w", username, err)
		}
		if member == nil {
			return nil, NotFoundError("user %q not found", username)
		}
		if seen[member.AuthID] {
			continue
		}
		seen[member.AuthID] = true
		memberAuthIDs = append(memberAuthIDs, member.AuthID)
	}

	group := &models.Group{
		Name:        name,
		OwnerAuthID: ownerAuthID,
	}
	if err := uow.GroupRepository().Create(ctx, group, memberAuthIDs); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	members, err := uow.UserRepository().GetPublicByAuthIDs(ctx, memberAuthIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.GroupDetail{
		Group:   group,
		Members: members,
	}, nil
}

// GetGroup retrieves a group with hydrated member profiles
func (s *groupService) GetGroup(ctx context.Context, groupID int64) (*models.GroupDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := s.loadGroupDetail(ctx, uow, groupID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return detail, nil
}

// ListGroups returns the user's groups, most recently updated first
func (s *groupService) ListGroups(ctx context.Context, authID string) ([]*models.GroupDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	groups, err := uow.GroupRepository().GetByMember(ctx, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}

	details := make([]*models.GroupDetail, 0, len(groups))
	for _, group := range groups {
		memberAuthIDs, err := uow.GroupRepository().GetMemberAuthIDs(ctx, group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get members of group %d: %w", group.ID, err)
		}
		members, err := uow.UserRepository().GetPublicByAuthIDs(ctx, memberAuthIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to hydrate members of group %d: %w", group.ID, err)
		}
		details = append(details, &models.GroupDetail{
			Group:   group,
			Members: members,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return details, nil
}

// AddMember adds a user to the group by username. Re-adding an existing
// member is a no-op and returns the current detail.
func (s *groupService) AddMember(ctx context.Context, groupID int64, username string) (*models.GroupDetail, error) {
	username = models.NormalizeUsername(username)
	if username == "" {
		return nil, InvalidInputError("username cannot be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group, err := uow.GroupRepository().GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, NotFoundError("group %d not found", groupID)
	}

	member, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member %q: %w", username, err)
	}
	if member == nil {
		return nil, NotFoundError("user %q not found", username)
	}

	if err := uow.GroupRepository().AddMember(ctx, groupID, member.AuthID); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	detail, err := s.loadGroupDetail(ctx, uow, groupID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return detail, nil
}

func (s *groupService) loadGroupDetail(ctx context.Context, uow UnitOfWork, groupID int64) (*models.GroupDetail, error) {
	group, err := uow.GroupRepository().GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, NotFoundError("group %d not found", groupID)
	}

	memberAuthIDs, err := uow.GroupRepository().GetMemberAuthIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	members, err := uow.UserRepository().GetPublicByAuthIDs(ctx, memberAuthIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate members: %w", err)
	}

	return &models.GroupDetail{
		Group:   group,
		Members: members,
	}, nil
}
