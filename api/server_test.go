package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgetbet/models"
	"budgetbet/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubBetService overrides only the methods a test cares about; calling an
// unstubbed method panics via the embedded nil interface.
type stubBetService struct {
	service.BetService
	getBet      func(ctx context.Context, betID int64) (*models.BetDetail, error)
	finalizeBet func(ctx context.Context, betID int64) (*models.BetDetail, error)
	cancelBet   func(ctx context.Context, betID int64, authID string) (*models.BetDetail, error)
}

func (s *stubBetService) GetBet(ctx context.Context, betID int64) (*models.BetDetail, error) {
	return s.getBet(ctx, betID)
}

func (s *stubBetService) FinalizeBet(ctx context.Context, betID int64) (*models.BetDetail, error) {
	return s.finalizeBet(ctx, betID)
}

func (s *stubBetService) CancelBet(ctx context.Context, betID int64, authID string) (*models.BetDetail, error) {
	return s.cancelBet(ctx, betID, authID)
}

// stubPlaidService serves a canned ledger while provider calls fail, the
// shape of a deployment with no provider credentials.
type stubPlaidService struct {
	service.PlaidService
	ingested func(ctx context.Context, authID string) ([]*models.Transaction, error)
	fetch    func(ctx context.Context, authID string, start, end time.Time) ([]service.ProviderTransaction, error)
}

func (s *stubPlaidService) IngestedTransactions(ctx context.Context, authID string) ([]*models.Transaction, error) {
	return s.ingested(ctx, authID)
}

func (s *stubPlaidService) FetchTransactions(ctx context.Context, authID string, start, end time.Time) ([]service.ProviderTransaction, error) {
	return s.fetch(ctx, authID, start, end)
}

func newTestRouter(bets service.BetService) *gin.Engine {
	return NewServer(nil, nil, bets, nil, nil).Router()
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestGetBet_ReturnsDetail(t *testing.T) {
	bets := &stubBetService{
		getBet: func(ctx context.Context, betID int64) (*models.BetDetail, error) {
			return &models.BetDetail{
				Bet:          &models.Bet{ID: betID, Title: "No takeout", Status: models.BetStatusActive},
				Participants: []*models.BetParticipant{{AuthID: "alice", Accepted: true}},
				Transactions: []*models.Transaction{},
			}, nil
		},
	}
	router := newTestRouter(bets)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bets/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No takeout")
}

func TestGetBet_NotFoundMapsTo404(t *testing.T) {
	bets := &stubBetService{
		getBet: func(ctx context.Context, betID int64) (*models.BetDetail, error) {
			return nil, service.NotFoundError("bet %d not found", betID)
		},
	}
	router := newTestRouter(bets)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bets/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBet_InvalidIDIs400(t *testing.T) {
	router := newTestRouter(&stubBetService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bets/not-a-number", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFinalizeBet_InvalidStateMapsTo409(t *testing.T) {
	bets := &stubBetService{
		finalizeBet: func(ctx context.Context, betID int64) (*models.BetDetail, error) {
			return nil, service.InvalidStateError("bet %d is cancelled and cannot be finalized", betID)
		},
	}
	router := newTestRouter(bets)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bets/7/finalize", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelBet_ForbiddenMapsTo403(t *testing.T) {
	bets := &stubBetService{
		cancelBet: func(ctx context.Context, betID int64, authID string) (*models.BetDetail, error) {
			return nil, service.ForbiddenError("only the creator can cancel bet %d", betID)
		},
	}
	router := newTestRouter(bets)

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"auth_id":"bob"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/bets/7/cancel", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelBet_MissingBodyIs400(t *testing.T) {
	router := newTestRouter(&stubBetService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bets/7/cancel", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaidTransactionsFeed_ServesStoredLedger(t *testing.T) {
	plaid := &stubPlaidService{
		ingested: func(ctx context.Context, authID string) ([]*models.Transaction, error) {
			return []*models.Transaction{
				{ID: 1, BetID: 5, AuthID: authID, Amount: 12.50, Merchant: "Corner Cafe"},
			}, nil
		},
		fetch: func(ctx context.Context, authID string, start, end time.Time) ([]service.ProviderTransaction, error) {
			return nil, service.UnavailableError("financial data provider is not configured", nil)
		},
	}
	router := NewServer(nil, nil, nil, nil, plaid).Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/plaid/transactions/alice", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Corner Cafe")
}

func TestPlaidTransactionsFetch_UnavailableMapsTo503(t *testing.T) {
	plaid := &stubPlaidService{
		fetch: func(ctx context.Context, authID string, start, end time.Time) ([]service.ProviderTransaction, error) {
			return nil, service.UnavailableError("financial data provider is not configured", nil)
		},
	}
	router := NewServer(nil, nil, nil, nil, plaid).Router()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/plaid/transactions/alice/fetch", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
