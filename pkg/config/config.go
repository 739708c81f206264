package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External data sources
	NSE   NSEConfig
	Yahoo YahooConfig

	// Universe filtering
	Filter FilterConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// NSEConfig holds NSE archive endpoints for the symbol master list
type NSEConfig struct {
	EquityListURL string
	BhavDataURL   string
}

// YahooConfig holds the market data provider configuration
type YahooConfig struct {
	ChartBaseURL string
	QuoteBaseURL string
	SymbolSuffix string // exchange suffix appended to NSE symbols
}

// FilterConfig holds universe filter defaults and sampler bounds
type FilterConfig struct {
	ExcludedSeries    []string // series tags dropped before sampling
	MinMarketCapCr    float64  // minimum market cap in crores
	MinDailyValueLakh float64  // minimum avg daily traded value in lakhs
	SampleSize        int      // symbols sampled per filtering run
	TrailingDays      int      // history window for traded value
	CachePath         string   // date-stamped universe cache file
	CallDelay         time.Duration
	BatchDelay        time.Duration
}

// Load reads configuration from environment variables.
// This function is the only caller of os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8085"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		NSE: NSEConfig{
			EquityListURL: getEnv("NSE_EQUITY_LIST_URL", "https://archives.nseindia.com/content/equities/EQUITY_L.csv"),
			BhavDataURL:   getEnv("NSE_BHAV_DATA_URL", "https://archives.nseindia.com/products/content/sec_bhavdata_full.csv"),
		},

		Yahoo: YahooConfig{
			ChartBaseURL: getEnv("YAHOO_CHART_BASE_URL", "https://query1.finance.yahoo.com"),
			QuoteBaseURL: getEnv("YAHOO_QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
			SymbolSuffix: getEnv("YAHOO_SYMBOL_SUFFIX", ".NS"),
		},

		Filter: FilterConfig{
			ExcludedSeries:    getEnvAsSlice("FILTER_EXCLUDED_SERIES", []string{"BE", "BZ"}),
			MinMarketCapCr:    getEnvAsFloat("FILTER_MIN_MARKET_CAP_CR", 100.0),
			MinDailyValueLakh: getEnvAsFloat("FILTER_MIN_DAILY_VALUE_LAKH", 10.0),
			SampleSize:        getEnvAsInt("FILTER_SAMPLE_SIZE", 50),
			TrailingDays:      getEnvAsInt("FILTER_TRAILING_DAYS", 5),
			CachePath:         getEnv("FILTER_CACHE_PATH", "stock_filter_cache.json"),
			CallDelay:         getEnvAsDuration("FILTER_CALL_DELAY", "50ms"),
			BatchDelay:        getEnvAsDuration("FILTER_BATCH_DELAY", "1s"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Filter.SampleSize <= 0 {
		return fmt.Errorf("FILTER_SAMPLE_SIZE must be positive")
	}

	if c.Filter.TrailingDays <= 0 {
		return fmt.Errorf("FILTER_TRAILING_DAYS must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	if len(values) == 0 {
		return defaultValue
	}

	return values
}
