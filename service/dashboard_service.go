package service

import (
	"context"
	"fmt"

	"budgetbet/models"
)

type dashboardService struct {
	uowFactory UnitOfWorkFactory
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(uowFactory UnitOfWorkFactory) DashboardService {
	return &dashboardService{
		uowFactory: uowFactory,
	}
}

// BuildDashboard composes the home view for one user: their profile, their
// groups with members, bets in flight ordered by nearest deadline, and
// settled bets ordered by most recent completion.
func (s *dashboardService) BuildDashboard(ctx context.Context, authID string) (*models.Dashboard, error) {
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

	groups, err := uow.GroupRepository().GetByMember(ctx, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	groupDetails := make([]*models.GroupDetail, 0, len(groups))
	for _, group := range groups {
		memberAuthIDs, err := uow.GroupRepository().GetMemberAuthIDs(ctx, group.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get members of group %d: %w", group.ID, err)
		}
		members, err := uow.UserRepository().GetPublicByAuthIDs(ctx, memberAuthIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to hydrate members of group %d: %w", group.ID, err)
		}
		groupDetails = append(groupDetails, &models.GroupDetail{
			Group:   group,
			Members: members,
		})
	}

	activeBets, err := uow.BetRepository().GetByParticipantAndStatus(ctx, authID,
		[]models.BetStatus{models.BetStatusPending, models.BetStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to get active bets: %w", err)
	}
	activeDetails, err := hydrateBetDetails(ctx, uow, activeBets)
	if err != nil {
		return nil, err
	}

	completedBets, err := uow.BetRepository().GetByParticipantAndStatus(ctx, authID,
		[]models.BetStatus{models.BetStatusCompleted})
	if err != nil {
		return nil, fmt.Errorf("failed to get completed bets: %w", err)
	}
	completedDetails, err := hydrateBetDetails(ctx, uow, completedBets)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Dashboard{
		User:          user.Public(),
		Groups:        groupDetails,
		ActiveBets:    activeDetails,
		CompletedBets: completedDetails,
	}, nil
}
