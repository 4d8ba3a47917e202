package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"budgetbet/events"
	"budgetbet/models"
)

type betService struct {
	uowFactory UnitOfWorkFactory
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory) BetService {
	return &betService{
		uowFactory: uowFactory,
	}
}

// CreateBet creates a bet covering every current member of the group. The
// creator starts accepted; everyone else must accept before the bet runs.
// A single-participant bet has nothing to wait for and activates at once.
func (s *betService) CreateBet(ctx context.Context, input CreateBetInput) (*models.BetDetail, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, InvalidInputError("bet title cannot be empty")
	}
	if input.BudgetLimit <= 0 {
		return nil, InvalidInputError("budget limit must be positive")
	}
	if input.Deadline.IsZero() {
		return nil, InvalidInputError("deadline is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	group, err := uow.GroupRepository().GetByID(ctx, input.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, NotFoundError("group %d not found", input.GroupID)
	}

	memberAuthIDs, err := uow.GroupRepository().GetMemberAuthIDs(ctx, input.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	isMember := false
	for _, authID := range memberAuthIDs {
		if authID == input.CreatedBy {
			isMember = true
			break
		}
	}
	if !isMember {
		return nil, ForbiddenError("only group members can create bets")
	}

	members, err := uow.UserRepository().GetPublicByAuthIDs(ctx, memberAuthIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate group members: %w", err)
	}
	profiles := make(map[string]models.UserPublic, len(members))
	for _, m := range members {
		profiles[m.AuthID] = m
	}

	now := time.Now()
	bet := &models.Bet{
		GroupID:     input.GroupID,
		CreatedBy:   input.CreatedBy,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		BudgetLimit: models.Round2(input.BudgetLimit),
		Deadline:    input.Deadline,
		Status:      models.BetStatusPending,
	}
	if len(memberAuthIDs) == 1 {
		bet.Status = models.BetStatusActive
		bet.ActivatedAt = &now
	}

	participants := make([]*models.BetParticipant, 0, len(memberAuthIDs))
	for _, authID := range memberAuthIDs {
		profile := profiles[authID]
		participants = append(participants, &models.BetParticipant{
			AuthID:      authID,
			Username:    profile.Username,
			DisplayName: profile.DisplayName,
			PhotoURL:    profile.PhotoURL,
			Accepted:    authID == input.CreatedBy,
			Spending:    0,
		})
	}

	if err := uow.BetRepository().CreateWithParticipants(ctx, bet, participants); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	if bet.IsActive() {
		uow.EventBus().Publish(events.BetStatusChangeEvent{
			BetID:     bet.ID,
			GroupID:   bet.GroupID,
			OldStatus: models.BetStatusPending,
			NewStatus: models.BetStatusActive,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BetDetail{
		Bet:          bet,
		Participants: participants,
		Transactions: []*models.Transaction{},
	}, nil
}

// GetBet retrieves a bet with participants and ledger. A pending bet whose
// participants have all accepted is activated on read; the transition is
// persisted only when it actually happened.
func (s *betService) GetBet(ctx context.Context, betID int64) (*models.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := s.loadBetDetail(ctx, uow, betID, false)
	if err != nil {
		return nil, err
	}

	oldStatus := detail.Bet.Status
	if detail.ReconcileStatus(time.Now()) {
		// Re-read under lock so a concurrent accept or cancel cannot race
		// the persisted transition.
		locked, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock bet: %w", err)
		}
		if locked.IsPending() {
			if err := uow.BetRepository().Update(ctx, detail.Bet); err != nil {
				return nil, fmt.Errorf("failed to persist activation: %w", err)
			}
			uow.EventBus().Publish(events.BetStatusChangeEvent{
				BetID:     detail.Bet.ID,
				GroupID:   detail.Bet.GroupID,
				OldStatus: oldStatus,
				NewStatus: detail.Bet.Status,
			})
		} else {
			detail.Bet = locked
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return detail, nil
}

// AcceptBet marks the caller's acceptance. Once the last participant
// accepts, the bet activates in the same transaction.
func (s *betService) AcceptBet(ctx context.Context, betID int64, authID string) (*models.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := s.loadBetDetail(ctx, uow, betID, true)
	if err != nil {
		return nil, err
	}

	participant := detail.Participant(authID)
	if participant == nil {
		return nil, NotFoundError("user %s is not a participant of bet %d", authID, betID)
	}
	if detail.Bet.IsTerminal() {
		return nil, InvalidStateError("bet %d is %s and cannot be accepted", betID, detail.Bet.Status)
	}

	if !participant.Accepted {
		participant.Accepted = true
		if err := uow.BetRepository().UpdateParticipant(ctx, participant); err != nil {
			return nil, fmt.Errorf("failed to update participant: %w", err)
		}
	}

	oldStatus := detail.Bet.Status
	if detail.ReconcileStatus(time.Now()) {
		if err := uow.BetRepository().Update(ctx, detail.Bet); err != nil {
			return nil, fmt.Errorf("failed to persist activation: %w", err)
		}
		uow.EventBus().Publish(events.BetStatusChangeEvent{
			BetID:     detail.Bet.ID,
			GroupID:   detail.Bet.GroupID,
			OldStatus: oldStatus,
			NewStatus: detail.Bet.Status,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return detail, nil
}

// CancelBet cancels a bet that has not yet activated. Only the creator may
// cancel, and only while the bet is pending.
func (s *betService) CancelBet(ctx context.Context, betID int64, authID string) (*models.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := s.loadBetDetail(ctx, uow, betID, true)
	if err != nil {
		return nil, err
	}

	if detail.Bet.CreatedBy != authID {
		return nil, ForbiddenError("only the creator can cancel bet %d", betID)
	}
	if !detail.Bet.IsPending() {
		return nil, InvalidStateError("bet %d is %s and can no longer be cancelled", betID, detail.Bet.Status)
	}

	oldStatus := detail.Bet.Status
	detail.Bet.Status = models.BetStatusCancelled
	if err := uow.BetRepository().Update(ctx, detail.Bet); err != nil {
		return nil, fmt.Errorf("failed to cancel bet: %w", err)
	}

	uow.EventBus().Publish(events.BetStatusChangeEvent{
		BetID:     detail.Bet.ID,
		GroupID:   detail.Bet.GroupID,
		OldStatus: oldStatus,
		NewStatus: models.BetStatusCancelled,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return detail, nil
}

// RecordTransaction appends an immutable spending entry and bumps the
// participant's cached total in the same transaction. Entries are accepted
// while the bet is pending or active.
func (s *betService) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*models.BetDetail, error) {
	if input.Amount <= 0 {
		return nil, InvalidInputError("amount must be positive")
	}
	input.Merchant = strings.TrimSpace(input.Merchant)
	if input.Merchant == "" {
		return nil, InvalidInputError("merchant cannot be empty")
	}
	if input.OccurredOn.IsZero() {
		input.OccurredOn = time.Now()
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := s.loadBetDetail(ctx, uow, input.BetID, true)
	if err != nil {
		return nil, err
	}

	if !detail.Bet.AcceptsTransactions() {
		return nil, InvalidStateError("bet %d is %s and no longer accepts transactions", input.BetID, detail.Bet.Status)
	}

	participant := detail.Participant(input.AuthID)
	if participant == nil {
		return nil, NotFoundError("user %s is not a participant of bet %d", input.AuthID, input.BetID)
	}

	txn := &models.Transaction{
		BetID:      input.BetID,
		AuthID:     input.AuthID,
		Amount:     models.Round2(input.Amount),
		Merchant:   input.Merchant,
		Category:   strings.TrimSpace(input.Category),
		OccurredOn: input.OccurredOn,
	}
	if err := uow.TransactionRepository().Append(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	participant.Spending = models.Round2(participant.Spending + txn.Amount)
	if err := uow.BetRepository().UpdateParticipant(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to update participant spending: %w", err)
	}

	detail.Transactions = append(detail.Transactions, txn)

	uow.EventBus().Publish(events.TransactionRecordedEvent{
		BetID:         txn.BetID,
		TransactionID: txn.ID,
		AuthID:        txn.AuthID,
		Amount:        txn.Amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return detail, nil
}

// FinalizeBet settles the bet. Spending totals are recomputed from the
// ledger so the winner never depends on drifted caches, then the lowest
// spender wins; ties resolve to the participant enrolled first. Finalizing
// an already completed bet returns it unchanged.
func (s *betService) FinalizeBet(ctx context.Context, betID int64) (*models.BetDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := s.loadBetDetail(ctx, uow, betID, true)
	if err != nil {
		return nil, err
	}

	if detail.Bet.IsCompleted() {
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return detail, nil
	}
	if detail.Bet.IsCancelled() {
		return nil, InvalidStateError("bet %d is cancelled and cannot be finalized", betID)
	}

	detail.RecomputeSpending()
	if err := uow.BetRepository().UpdateParticipantSpendings(ctx, detail.Participants); err != nil {
		return nil, fmt.Errorf("failed to persist recomputed spending: %w", err)
	}

	winner := detail.PickWinner()

	now := time.Now()
	oldStatus := detail.Bet.Status
	detail.Bet.Status = models.BetStatusCompleted
	detail.Bet.CompletedAt = &now
	if winner != nil {
		winnerAuthID := winner.AuthID
		detail.Bet.WinnerAuthID = &winnerAuthID
	}
	if err := uow.BetRepository().Update(ctx, detail.Bet); err != nil {
		return nil, fmt.Errorf("failed to finalize bet: %w", err)
	}

	uow.EventBus().Publish(events.BetStatusChangeEvent{
		BetID:     detail.Bet.ID,
		GroupID:   detail.Bet.GroupID,
		OldStatus: oldStatus,
		NewStatus: models.BetStatusCompleted,
	})
	if winner != nil {
		uow.EventBus().Publish(events.BetFinalizedEvent{
			BetID:        detail.Bet.ID,
			GroupID:      detail.Bet.GroupID,
			WinnerAuthID: winner.AuthID,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return detail, nil
}

// ListGroupBets returns a group's bets, newest first, each with its
// participants and ledger.
func (s *betService) ListGroupBets(ctx context.Context, groupID int64) ([]*models.BetDetail, error) {
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

	bets, err := uow.BetRepository().GetByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets: %w", err)
	}

	details, err := hydrateBetDetails(ctx, uow, bets)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return details, nil
}

// loadBetDetail loads a bet with its participants and ledger. When forUpdate
// is set the bet row is locked, serializing concurrent mutations of one bet.
func (s *betService) loadBetDetail(ctx context.Context, uow UnitOfWork, betID int64, forUpdate bool) (*models.BetDetail, error) {
	var bet *models.Bet
	var err error
	if forUpdate {
		bet, err = uow.BetRepository().GetByIDForUpdate(ctx, betID)
	} else {
		bet, err = uow.BetRepository().GetByID(ctx, betID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, NotFoundError("bet %d not found", betID)
	}

	participants, err := uow.BetRepository().GetParticipants(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	transactions, err := uow.TransactionRepository().ListByBet(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	return &models.BetDetail{
		Bet:          bet,
		Participants: participants,
		Transactions: transactions,
	}, nil
}

// hydrateBetDetails attaches participants and ledgers to a list of bets
func hydrateBetDetails(ctx context.Context, uow UnitOfWork, bets []*models.Bet) ([]*models.BetDetail, error) {
	details := make([]*models.BetDetail, 0, len(bets))
	for _, bet := range bets {
		participants, err := uow.BetRepository().GetParticipants(ctx, bet.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get participants of bet %d: %w", bet.ID, err)
		}
		transactions, err := uow.TransactionRepository().ListByBet(ctx, bet.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get transactions of bet %d: %w", bet.ID, err)
		}
		details = append(details, &models.BetDetail{
			Bet:          bet,
			Participants: participants,
			Transactions: transactions,
		})
	}
	return details, nil
}
