package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbet/service"
)

// Server bundles the HTTP handlers over the service layer
type Server struct {
	users     service.UserService
	groups    service.GroupService
	bets      service.BetService
	dashboard service.DashboardService
	plaid     service.PlaidService
}

// NewServer creates a server over the given services
func NewServer(
	users service.UserService,
	groups service.GroupService,
	bets service.BetService,
	dashboard service.DashboardService,
	plaid service.PlaidService,
) *Server {
	return &Server{
		users:     users,
		groups:    groups,
		bets:      bets,
		dashboard: dashboard,
		plaid:     plaid,
	}
}

// Router builds the gin engine with all routes and middleware
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(), CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api")
	{
		users := apiGroup.Group("/users")
		{
			users.POST("/sync", s.syncUser)
			users.GET("/search", s.searchUsers)
			users.GET("/:auth_id", s.getUser)
			users.PATCH("/:auth_id", s.updateUser)
		}

		groups := apiGroup.Group("/groups")
		{
			groups.POST("", s.createGroup)
			groups.GET("", s.listGroups)
			groups.GET("/:id", s.getGroup)
			groups.POST("/:id/members", s.addGroupMember)
			groups.GET("/:id/bets", s.listGroupBets)
		}

		bets := apiGroup.Group("/bets")
		{
			bets.POST("", s.createBet)
			bets.GET("/:id", s.getBet)
			bets.POST("/:id/accept", s.acceptBet)
			bets.POST("/:id/cancel", s.cancelBet)
			bets.POST("/:id/transactions", s.recordTransaction)
			bets.POST("/:id/finalize", s.finalizeBet)
		}

		apiGroup.GET("/dashboard/:auth_id", s.getDashboard)

		plaid := apiGroup.Group("/plaid")
		{
			plaid.POST("/link-token", s.createLinkToken)
			plaid.POST("/exchange", s.exchangePublicToken)
			plaid.GET("/transactions/:auth_id", s.getIngestedTransactions)
			plaid.GET("/transactions/:auth_id/fetch", s.fetchPlaidTransactions)
		}
	}

	return router
}
