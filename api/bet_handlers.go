package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"budgetbet/service"
)

type createBetRequest struct {
	GroupID     int64     `json:"group_id" binding:"required"`
	CreatedBy   string    `json:"created_by" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	BudgetLimit float64   `json:"budget_limit" binding:"required"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

func (s *Server) createBet(c *gin.Context) {
	var req createBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := s.bets.CreateBet(c.Request.Context(), service.CreateBetInput{
		GroupID:     req.GroupID,
		CreatedBy:   req.CreatedBy,
		Title:       req.Title,
		Description: req.Description,
		BudgetLimit: req.BudgetLimit,
		Deadline:    req.Deadline,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (s *Server) getBet(c *gin.Context) {
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := s.bets.GetBet(c.Request.Context(), betID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type betActorRequest struct {
	AuthID string `json:"auth_id" binding:"required"`
}

func (s *Server) acceptBet(c *gin.Context) {
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req betActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := s.bets.AcceptBet(c.Request.Context(), betID, req.AuthID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) cancelBet(c *gin.Context) {
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req betActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := s.bets.CancelBet(c.Request.Context(), betID, req.AuthID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type recordTransactionRequest struct {
	AuthID     string  `json:"auth_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
	Merchant   string  `json:"merchant" binding:"required"`
	Category   string  `json:"category"`
	OccurredOn string  `json:"occurred_on"`
}

func (s *Server) recordTransaction(c *gin.Context) {
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req recordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var occurredOn time.Time
	if req.OccurredOn != "" {
		parsed, err := time.Parse("2006-01-02", req.OccurredOn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "occurred_on must be YYYY-MM-DD"})
			return
		}
		occurredOn = parsed
	}

	detail, err := s.bets.RecordTransaction(c.Request.Context(), service.RecordTransactionInput{
		BetID:      betID,
		AuthID:     req.AuthID,
		Amount:     req.Amount,
		Merchant:   req.Merchant,
		Category:   req.Category,
		OccurredOn: occurredOn,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (s *Server) finalizeBet(c *gin.Context) {
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := s.bets.FinalizeBet(c.Request.Context(), betID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
