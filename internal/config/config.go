// Package config manages application configuration
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port            string
	Environment     string // "development" or "production"
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Feature flags
	EnableMetrics bool

	// Market data
	MarketDataProvider string // "mock", "yahoo" or "alphavantage"
	MarketDataAPIKey   string
	MarketDataBaseURL  string
	MarketDataTimeout  time.Duration
	MarketDataCacheTTL time.Duration
	MarketDataRPS      float64
	MarketDataBurst    int

	// Quant conventions
	TradingDaysPerYear int
	RiskFreeRate       float64

	// Optimizer
	SolverMaxIterations int

	// Monte Carlo
	DefaultSimulations int
	MinSimulations     int
	MaxSimulations     int
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("QUANTCORE_PORT", "8080"),
		Environment:         getEnv("QUANTCORE_ENV", "development"),
		LogLevel:            getEnv("QUANTCORE_LOG_LEVEL", "info"),
		ReadTimeout:         getDurationEnv("QUANTCORE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:        getDurationEnv("QUANTCORE_WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:     getDurationEnv("QUANTCORE_SHUTDOWN_TIMEOUT", 30*time.Second),
		EnableMetrics:       getBoolEnv("QUANTCORE_ENABLE_METRICS", true),
		MarketDataProvider:  getEnv("QUANTCORE_MARKETDATA_PROVIDER", "mock"),
		MarketDataAPIKey:    os.Getenv("QUANTCORE_MARKETDATA_API_KEY"),
		MarketDataBaseURL:   os.Getenv("QUANTCORE_MARKETDATA_BASE_URL"),
		MarketDataTimeout:   getDurationEnv("QUANTCORE_MARKETDATA_TIMEOUT", 10*time.Second),
		MarketDataCacheTTL:  getDurationEnv("QUANTCORE_MARKETDATA_CACHE_TTL", 5*time.Minute),
		MarketDataRPS:       getFloatEnv("QUANTCORE_MARKETDATA_RPS", 5),
		MarketDataBurst:     getIntEnv("QUANTCORE_MARKETDATA_BURST", 10),
		TradingDaysPerYear:  getIntEnv("QUANTCORE_TRADING_DAYS", 252),
		RiskFreeRate:        getFloatEnv("QUANTCORE_RISK_FREE_RATE", 0.04),
		SolverMaxIterations: getIntEnv("QUANTCORE_SOLVER_MAX_ITERATIONS", 2000),
		DefaultSimulations:  getIntEnv("QUANTCORE_MC_DEFAULT_SIMULATIONS", 10000),
		MinSimulations:      getIntEnv("QUANTCORE_MC_MIN_SIMULATIONS", 100),
		MaxSimulations:      getIntEnv("QUANTCORE_MC_MAX_SIMULATIONS", 50000),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
