package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration sourced from the environment.
type Config struct {
	Env      string
	LogLevel string

	// Telegram transport.
	TelegramToken string
	TelegramDebug bool

	// OperatorChatID is the single privileged identity allowed to drive
	// booking lifecycle transitions.
	OperatorChatID int64

	// Ops HTTP server (health checks, metrics, read-only booking views).
	Port     string
	OpsToken string

	// Durable append sink for finalized bookings.
	BookingsCSVPath string

	// Payment instructions sent once a travel fee is assigned.
	PaymentLink string
	PaymentNote string

	// BusinessName appears in calendar artifacts and notifications.
	BusinessName string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		TelegramToken:   getEnv("TELEGRAM_TOKEN", ""),
		TelegramDebug:   getEnvAsBool("TELEGRAM_DEBUG", false),
		OperatorChatID:  getEnvAsInt64("OPERATOR_CHAT_ID", 0),
		Port:            getEnv("PORT", "10000"),
		OpsToken:        getEnv("OPS_TOKEN", ""),
		BookingsCSVPath: getEnv("BOOKINGS_CSV_PATH", "data/bookings.csv"),
		PaymentLink:     getEnv("PAYMENT_LINK", ""),
		PaymentNote:     getEnv("PAYMENT_NOTE", "50% deposit secures your slot."),
		BusinessName:    getEnv("BUSINESS_NAME", "Invalid8th"),
	}
}

// Validate reports configuration the process cannot start without.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("config: TELEGRAM_TOKEN is required")
	}
	if c.OperatorChatID == 0 {
		return fmt.Errorf("config: OPERATOR_CHAT_ID is required")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value.
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
