// Package plaid is a minimal HTTP client for the Plaid API, covering the
// three endpoints the application uses: link token creation, public token
// exchange, and transaction retrieval.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client talks to the Plaid REST API
type Client struct {
	clientID   string
	secret     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a Plaid client for the given environment base URL
func NewClient(clientID, secret, baseURL string, pageSize int) *Client {
	return &Client{
		clientID: clientID,
		secret:   secret,
		baseURL:  baseURL,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from Plaid
type APIError struct {
	StatusCode   int    `json:"-"`
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid: %s (%s, status %d)", e.ErrorMessage, e.ErrorCode, e.StatusCode)
}

// Transaction is one transaction row as returned by /transactions/get
type Transaction struct {
	TransactionID string   `json:"transaction_id"`
	AccountID     string   `json:"account_id"`
	Name          string   `json:"name"`
	MerchantName  string   `json:"merchant_name"`
	Amount        float64  `json:"amount"`
	Date          string   `json:"date"`
	Category      []string `json:"category"`
	Pending       bool     `json:"pending"`
}

type linkTokenRequest struct {
	ClientID     string        `json:"client_id"`
	Secret       string        `json:"secret"`
	ClientName   string        `json:"client_name"`
	User         linkTokenUser `json:"user"`
	Products     []string      `json:"products"`
	CountryCodes []string      `json:"country_codes"`
	Language     string        `json:"language"`
}

type linkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

type linkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

// CreateLinkToken issues a link token bound to the given user id
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID string) (string, error) {
	var resp linkTokenResponse
	err := c.post(ctx, "/link/token/create", linkTokenRequest{
		ClientID:     c.clientID,
		Secret:       c.secret,
		ClientName:   "BudgetBet",
		User:         linkTokenUser{ClientUserID: clientUserID},
		Products:     []string{"transactions"},
		CountryCodes: []string{"US"},
		Language:     "en",
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

type exchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

// ExchangeResult holds the credentials returned by a public token exchange
type ExchangeResult struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// ExchangePublicToken trades a Link public token for a permanent access token
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	var resp ExchangeResult
	err := c.post(ctx, "/item/public_token/exchange", exchangeRequest{
		ClientID:    c.clientID,
		Secret:      c.secret,
		PublicToken: publicToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

type transactionsRequest struct {
	ClientID    string              `json:"client_id"`
	Secret      string              `json:"secret"`
	AccessToken string              `json:"access_token"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	Options     transactionsOptions `json:"options"`
}

type transactionsOptions struct {
	Count  int `json:"count"`
	Offset int `json:"offset"`
}

type transactionsResponse struct {
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
}

// GetTransactions retrieves all transactions for an item within the date
// range, paging through /transactions/get until the reported total is
// reached. Dates use Plaid's YYYY-MM-DD format.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error) {
	var all []Transaction
	offset := 0
	for {
		var resp transactionsResponse
		err := c.post(ctx, "/transactions/get", transactionsRequest{
			ClientID:    c.clientID,
			Secret:      c.secret,
			AccessToken: accessToken,
			StartDate:   start.Format("2006-01-02"),
			EndDate:     end.Format("2006-01-02"),
			Options: transactionsOptions{
				Count:  c.pageSize,
				Offset: offset,
			},
		}, &resp)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Transactions...)
		offset += len(resp.Transactions)
		if offset >= resp.TotalTransactions || len(resp.Transactions) == 0 {
			break
		}
	}
	return all, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil {
			apiErr.ErrorMessage = string(data)
		}
		log.WithFields(log.Fields{
			"path":      path,
			"status":    resp.StatusCode,
			"errorCode": apiErr.ErrorCode,
		}).Warn("Plaid API request failed")
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
