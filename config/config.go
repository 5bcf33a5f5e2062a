package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"borrowbot/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Redis configuration (shared price snapshot)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NATS configuration (post-commit events, optional)
	NATSServers string

	// TON configuration
	TonConfigURL   string // Liteserver global config used by the ledger client
	ProductAddress string // Destination of the daily checkin transfer

	// Price oracle configuration
	BinanceBaseURL string
	PriceSymbol    string

	// Scheduling configuration
	DayResetHour int // Hour in UTC when a new scheduling day starts (0-23)

	// Logging configuration
	LogLevel  string
	LogFormat string // "text" or "json"

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from the environment, reading a local .env file first when present
func load() (*Config, error) {
	// A missing .env is normal in containers; real variables always win over the file
	_ = godotenv.Load()

	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Redis
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntWithDefault("REDIS_DB", 0),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// TON
		TonConfigURL:   getEnvWithDefault("TON_CONFIG_URL", "https://ton.org/global.config.json"),
		ProductAddress: os.Getenv("PRODUCT_ADDRESS"),

		// Price oracle
		BinanceBaseURL: getEnvWithDefault("BINANCE_BASE_URL", "https://api.binance.com"),
		PriceSymbol:    getEnvWithDefault("PRICE_SYMBOL", "TONUSDT"),

		// Scheduling day starts at 12:00 UTC
		DayResetHour: getEnvIntWithDefault("DAY_RESET_HOUR", 12),

		// Logging
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "borrowbot"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: getEnvIntWithDefault("OTEL_EXPORT_INTERVAL_MILLIS", 30000),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings the process cannot start without
func (c *Config) Validate() error {
	if c.Environment == "test" {
		return nil
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	if c.ProductAddress == "" {
		return fmt.Errorf("PRODUCT_ADDRESS is required")
	}
	if c.DayResetHour < 0 || c.DayResetHour > 23 {
		return fmt.Errorf("DAY_RESET_HOUR must be between 0 and 23, got %d", c.DayResetHour)
	}

	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntWithDefault parses an integer environment variable, falling back on absence or parse failure
func getEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:    "test",
		PriceSymbol:    "TONUSDT",
		ProductAddress: "EQTestProductAddress",
		DayResetHour:   12,
		LogLevel:       "debug",
		LogFormat:      "text",
	}
}
