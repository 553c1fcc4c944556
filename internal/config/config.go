package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// News source settings
	SourceName      string // "imdb" or "rss"
	IMDbGraphQLURL  string
	NewsBatchSize   int // items requested per category on each fetch
	FeedsConfigPath string

	// Supabase REST settings
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// Direct Postgres settings (alternative store backend)
	StoreBackend string // "rest" or "postgres"
	DatabaseURL  string

	// Gemini settings
	GeminiAPIKey    string
	ClassifyModel   string
	RewriteModel    string
	MaxGeminiDaily  int // maximum Gemini requests per day (0 = unlimited)
	RecentTitlesMax int // titles shown to the classifier for duplicate detection

	// Rewrite fallback settings
	RewriteAPIURL string // remote rewrite service used when the direct call fails

	// Poster settings
	PosterBaseURL string

	// Poller intervals
	FetchInterval          time.Duration
	FilterInterval         time.Duration
	AnalyzeSuccessInterval time.Duration
	AnalyzeRetryInterval   time.Duration

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Scratch store settings
	ScratchTTLHours int

	// Monitoring/control HTTP server
	EnableHTTPControl bool
	HTTPPort          string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SourceName:             "imdb",
		IMDbGraphQLURL:         "https://api.graphql.imdb.com",
		NewsBatchSize:          20,
		FeedsConfigPath:        "configs/feeds.yaml",
		StoreBackend:           "rest",
		ClassifyModel:          "gemini-2.5-flash-lite",
		RewriteModel:           "gemini-2.5-flash",
		MaxGeminiDaily:         0,
		RecentTitlesMax:        25,
		FetchInterval:          180 * time.Second,
		FilterInterval:         120 * time.Second,
		AnalyzeSuccessInterval: 180 * time.Second,
		AnalyzeRetryInterval:   60 * time.Second,
		RequestTimeout:         30 * time.Second,
		RetryAttempts:          3,
		RetryDelay:             5 * time.Second,
		ScratchTTLHours:        48,
		HTTPPort:               "8080",
	}

	// Load from environment
	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	cfg.SupabaseAnonKey = os.Getenv("SUPA_KEY")
	cfg.SupabaseServiceKey = os.Getenv("SUPA_SERVICE_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RewriteAPIURL = os.Getenv("REWRITE_API_URL")
	cfg.PosterBaseURL = getEnvOrDefault("POSTER_BASE_URL", "http://localhost:8080")

	if src := os.Getenv("NEWS_SOURCE"); src != "" {
		cfg.SourceName = src
	}
	if backend := os.Getenv("STORE_BACKEND"); backend != "" {
		cfg.StoreBackend = backend
	}
	if url := os.Getenv("IMDB_GRAPHQL_URL"); url != "" {
		cfg.IMDbGraphQLURL = url
	}
	if path := os.Getenv("FEEDS_CONFIG_PATH"); path != "" {
		cfg.FeedsConfigPath = path
	}
	if model := os.Getenv("CLASSIFY_MODEL"); model != "" {
		cfg.ClassifyModel = model
	}
	if model := os.Getenv("REWRITE_MODEL"); model != "" {
		cfg.RewriteModel = model
	}

	cfg.NewsBatchSize = getEnvIntOrDefault("NEWS_BATCH_SIZE", cfg.NewsBatchSize)
	cfg.MaxGeminiDaily = getEnvIntOrDefault("MAX_GEMINI_DAILY", cfg.MaxGeminiDaily)
	cfg.RecentTitlesMax = getEnvIntOrDefault("RECENT_TITLES_MAX", cfg.RecentTitlesMax)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.ScratchTTLHours = getEnvIntOrDefault("SCRATCH_TTL_HOURS", cfg.ScratchTTLHours)

	cfg.FetchInterval = getEnvSecondsOrDefault("FETCH_INTERVAL_SECONDS", cfg.FetchInterval)
	cfg.FilterInterval = getEnvSecondsOrDefault("FILTER_INTERVAL_SECONDS", cfg.FilterInterval)
	cfg.AnalyzeSuccessInterval = getEnvSecondsOrDefault("ANALYZE_SUCCESS_INTERVAL_SECONDS", cfg.AnalyzeSuccessInterval)
	cfg.AnalyzeRetryInterval = getEnvSecondsOrDefault("ANALYZE_RETRY_INTERVAL_SECONDS", cfg.AnalyzeRetryInterval)
	cfg.RequestTimeout = getEnvSecondsOrDefault("REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeout)
	cfg.RetryDelay = getEnvSecondsOrDefault("RETRY_DELAY_SECONDS", cfg.RetryDelay)

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}
	if v := os.Getenv("ENABLE_HTTP_CONTROL"); v == "true" {
		cfg.EnableHTTPControl = true
	}
	if port := os.Getenv("HTTP_PORT"); port != "" {
		cfg.HTTPPort = port
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return time.Duration(intValue) * time.Second
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	switch c.StoreBackend {
	case "rest":
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the rest backend")
		}
		if c.SupabaseAnonKey == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPA_KEY and SUPA_SERVICE_KEY are required for the rest backend")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be 'rest' or 'postgres'")
	}
	if c.SourceName != "imdb" && c.SourceName != "rss" {
		return fmt.Errorf("NEWS_SOURCE must be 'imdb' or 'rss'")
	}
	return nil
}
