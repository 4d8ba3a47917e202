package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"budgetbet/api"
	"budgetbet/config"
	"budgetbet/database"
	"budgetbet/events"
	"budgetbet/plaid"
	"budgetbet/repository"
	"budgetbet/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting budgetbet server...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	subscribeEventLoggers(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	plaidClient := plaid.NewClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidBaseURL, cfg.PlaidPageSize)
	userService := service.NewUserService(uowFactory)
	groupService := service.NewGroupService(uowFactory)
	betService := service.NewBetService(uowFactory)
	dashboardService := service.NewDashboardService(uowFactory)
	plaidService := service.NewPlaidService(uowFactory, plaidClient, cfg)
	log.Println("Services initialized successfully")

	// Initialize HTTP server
	server := api.NewServer(userService, groupService, betService, dashboardService, plaidService)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on port %s in %s mode...", cfg.Port, cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
