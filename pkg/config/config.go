// Package config collects the service configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the entrypoints need to wire the service.
type Config struct {
	Port              string
	AccountsTable     string
	TransactionsTable string
	QueueURL          string
	WebhookURL        string

	// DailyLimit and TransferFee are in cents.
	DailyLimit  int64
	TransferFee int64
	LimitWindow time.Duration

	// StuckAge is how long a transaction may sit pending before the
	// reconciliation sweep re-enqueues it.
	StuckAge time.Duration
}

// Load reads the configuration from the environment, with a .env file as a
// convenience for local development.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:              getEnv("HTTP_PORT", "8080"),
		AccountsTable:     os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME"),
		TransactionsTable: os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME"),
		QueueURL:          os.Getenv("SQS_QUEUE_URL"),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		DailyLimit:        getEnvInt64("DAILY_LIMIT_CENTS", 500000),
		TransferFee:       getEnvInt64("TRANSFER_FEE_CENTS", 0),
		LimitWindow:       getEnvDuration("LIMIT_WINDOW", 24*time.Hour),
		StuckAge:          getEnvDuration("STUCK_AGE", time.Hour),
	}

	if cfg.AccountsTable == "" || cfg.TransactionsTable == "" {
		return nil, fmt.Errorf("DYNAMODB_ACCOUNTS_TABLE_NAME and DYNAMODB_TRANSACTIONS_TABLE_NAME must be set")
	}
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("SQS_QUEUE_URL must be set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Invalid value for %s, using default: %v", key, err)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid value for %s, using default: %v", key, err)
		return fallback
	}
	return parsed
}
