package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	Port string

	// Database configuration
	DatabaseURL string

	// Plaid configuration
	PlaidClientID string
	PlaidSecret   string
	PlaidBaseURL  string
	PlaidPageSize int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		Port:        os.Getenv("PORT"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PlaidClientID: os.Getenv("PLAID_CLIENT_ID"),
		PlaidSecret:   os.Getenv("PLAID_SECRET"),
		PlaidBaseURL:  os.Getenv("PLAID_BASE_URL"),
		PlaidPageSize: 100,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.Port == "" {
		config.Port = "8080"
	}

	if config.PlaidBaseURL == "" {
		config.PlaidBaseURL = "https://sandbox.plaid.com"
	}

	if pageSize := os.Getenv("PLAID_PAGE_SIZE"); pageSize != "" {
		if parsed, err := strconv.Atoi(pageSize); err == nil && parsed > 0 {
			config.PlaidPageSize = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// PlaidConfigured reports whether Plaid credentials are present
func (c *Config) PlaidConfigured() bool {
	return c.PlaidClientID != "" && c.PlaidSecret != ""
}
