package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) getDashboard(c *gin.Context) {
	dashboard, err := s.dashboard.BuildDashboard(c.Request.Context(), c.Param("auth_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

type linkTokenRequest struct {
	AuthID string `json:"auth_id" binding:"required"`
}

func (s *Server) createLinkToken(c *gin.Context) {
	var req linkTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := s.plaid.CreateLinkToken(c.Request.Context(), req.AuthID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"link_token": token})
}

type exchangeTokenRequest struct {
	AuthID          string `json:"auth_id" binding:"required"`
	PublicToken     string `json:"public_token" binding:"required"`
	InstitutionName string `json:"institution_name"`
}

func (s *Server) exchangePublicToken(c *gin.Context) {
	var req exchangeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := s.plaid.ExchangePublicToken(c.Request.Context(), req.AuthID, req.PublicToken, req.InstitutionName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// getIngestedTransactions serves the stored ledger feed for a user,
// most recent first. It reads local data only and works without a
// configured provider.
func (s *Server) getIngestedTransactions(c *gin.Context) {
	txns, err := s.plaid.IngestedTransactions(c.Request.Context(), c.Param("auth_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

// fetchPlaidTransactions pulls live transactions from the provider for
// every institution the user has linked.
func (s *Server) fetchPlaidTransactions(c *gin.Context) {
	authID := c.Param("auth_id")

	end := time.Now()
	start := end.AddDate(0, -1, 0)
	if v := c.Query("start"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start must be YYYY-MM-DD"})
			return
		}
		start = parsed
	}
	if v := c.Query("end"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end must be YYYY-MM-DD"})
			return
		}
		end = parsed
	}

	txns, err := s.plaid.FetchTransactions(c.Request.Context(), authID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}
