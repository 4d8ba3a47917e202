package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"budgetbet/config"
	"budgetbet/models"
	"budgetbet/plaid"
)

type plaidService struct {
	uowFactory UnitOfWorkFactory
	client     *plaid.Client
	config     *config.Config
}

// NewPlaidService creates a new financial-data integration service
func NewPlaidService(uowFactory UnitOfWorkFactory, client *plaid.Client, cfg *config.Config) PlaidService {
	return &plaidService{
		uowFactory: uowFactory,
		client:     client,
		config:     cfg,
	}
}

// CreateLinkToken issues a provider link token for the user
func (s *plaidService) CreateLinkToken(ctx context.Context, authID string) (string, error) {
	if !s.config.PlaidConfigured() {
		return "", UnavailableError("financial data provider is not configured", nil)
	}

	token, err := s.client.CreateLinkToken(ctx, authID)
	if err != nil {
		return "", UnavailableError("failed to create link token", err)
	}
	return token, nil
}

// ExchangePublicToken trades a Link public token for an access token and
// stores the resulting item. Re-linking the same institution refreshes the
// stored token instead of creating a duplicate.
func (s *plaidService) ExchangePublicToken(ctx context.Context, authID, publicToken, institutionName string) (*models.PlaidItem, error) {
	if !s.config.PlaidConfigured() {
		return nil, UnavailableError("financial data provider is not configured", nil)
	}
	if strings.TrimSpace(publicToken) == "" {
		return nil, InvalidInputError("public token cannot be empty")
	}

	result, err := s.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, UnavailableError("failed to exchange public token", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item := &models.PlaidItem{
		AuthID:          authID,
		ItemID:          result.ItemID,
		AccessToken:     result.AccessToken,
		InstitutionName: strings.TrimSpace(institutionName),
	}
	if err := uow.PlaidItemRepository().Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store linked item: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return item, nil
}

// FetchTransactions retrieves provider transactions across all of the
// user's linked institutions within the date range.
func (s *plaidService) FetchTransactions(ctx context.Context, authID string, start, end time.Time) ([]ProviderTransaction, error) {
	if !s.config.PlaidConfigured() {
		return nil, UnavailableError("financial data provider is not configured", nil)
	}
	if end.Before(start) {
		return nil, InvalidInputError("end date must not precede start date")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.PlaidItemRepository().GetByAuthID(ctx, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked items: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if len(items) == 0 {
		return nil, NotFoundError("user %s has no linked institutions", authID)
	}

	results := make([]ProviderTransaction, 0)
	for _, item := range items {
		txns, err := s.client.GetTransactions(ctx, item.AccessToken, start, end)
		if err != nil {
			return nil, UnavailableError("failed to fetch transactions", err)
		}
		for _, t := range txns {
			results = append(results, ProviderTransaction{
				TransactionID: t.TransactionID,
				AccountID:     t.AccountID,
				Name:          t.Name,
				MerchantName:  t.MerchantName,
				Amount:        t.Amount,
				Date:          t.Date,
				Category:      strings.Join(t.Category, " > "),
				Pending:       t.Pending,
			})
		}
	}
	return results, nil
}

// IngestedTransactions returns the user's stored ledger feed, most recent first
func (s *plaidService) IngestedTransactions(ctx context.Context, authID string) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txns, err := uow.TransactionRepository().ListByUser(ctx, authID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return txns, nil
}
