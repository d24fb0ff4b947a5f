package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Quotes    QuoteConfig
	Refresh   RefreshConfig
	Valuation ValuationConfig
	Gemini    GeminiConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string
	Format string
}

// QuoteConfig holds the market-data provider settings.
type QuoteConfig struct {
	BaseURL        string
	Token          string
	ChunkSize      int
	RateLimit      int // requests per second
	MaxAttempts    int
	RetryBaseDelay time.Duration
	Timeout        time.Duration
	HistoryCache   int
	HistoryTTL     time.Duration
	DomesticSuffix string
	FXSymbol       string
}

// RefreshConfig controls the price refresh orchestrator.
type RefreshConfig struct {
	MinInterval   time.Duration
	SafetyTimeout time.Duration
	Schedule      string // cron spec, empty disables scheduled refreshes
}

// ValuationConfig holds the constants of the valuation model.
type ValuationConfig struct {
	TargetYield  float64 // minimum acceptable dividend yield, as a fraction
	RiskFreeRate float64 // annual, as a fraction
}

// GeminiConfig enables the optional narrative insights.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	p := &parser{}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/portfolio_radar.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Quotes: QuoteConfig{
			BaseURL:        getEnv("BRAPI_BASE_URL", "https://brapi.dev/api"),
			ChunkSize:      p.int("QUOTE_CHUNK_SIZE", 20),
			RateLimit:      p.int("QUOTE_RATE_LIMIT", 5),
			MaxAttempts:    p.int("QUOTE_MAX_ATTEMPTS", 3),
			RetryBaseDelay: p.duration("QUOTE_RETRY_BASE_DELAY", 500*time.Millisecond),
			Timeout:        p.duration("QUOTE_TIMEOUT", 10*time.Second),
			HistoryCache:   p.int("HISTORY_CACHE_SIZE", 128),
			HistoryTTL:     p.duration("HISTORY_CACHE_TTL", 15*time.Minute),
			DomesticSuffix: getEnv("DOMESTIC_SUFFIX", ".SA"),
			FXSymbol:       getEnv("FX_SYMBOL", "USDBRL=X"),
		},
		Refresh: RefreshConfig{
			MinInterval:   p.duration("REFRESH_MIN_INTERVAL", 10*time.Second),
			SafetyTimeout: p.duration("REFRESH_SAFETY_TIMEOUT", 30*time.Second),
			Schedule:      os.Getenv("REFRESH_SCHEDULE"),
		},
		Valuation: ValuationConfig{
			TargetYield:  p.float("VALUATION_TARGET_YIELD", 0.06),
			RiskFreeRate: p.float("VALUATION_RISK_FREE_RATE", 0.1325),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
	}

	if _, set := os.LookupEnv("REFRESH_SCHEDULE"); !set {
		config.Refresh.Schedule = "@every 5m"
	}

	if p.err != nil {
		return nil, p.err
	}

	token, err := resolveProviderToken()
	if err != nil {
		return nil, err
	}
	config.Quotes.Token = token

	if config.Quotes.ChunkSize <= 0 {
		return nil, fmt.Errorf("QUOTE_CHUNK_SIZE must be positive, got %d", config.Quotes.ChunkSize)
	}
	if config.Quotes.MaxAttempts <= 0 {
		return nil, fmt.Errorf("QUOTE_MAX_ATTEMPTS must be positive, got %d", config.Quotes.MaxAttempts)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) float(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}
