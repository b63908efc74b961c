package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Scraper modes.
const (
	ScraperModeBrowser = "browser"
	ScraperModeHTTP    = "http"
	ScraperModeWorker  = "worker"
)

// Recency policies applied to leads incorporated before the cutoff year.
const (
	RecencyPolicyFlag    = "flag"
	RecencyPolicyExclude = "exclude"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// LogConfig controls the global zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// AIConfig configures the completion provider.
type AIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64
}

// RegistryConfig configures the Companies House client.
type RegistryConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	RateLimit   RateLimitConfig
	MaxAttempts int
}

// ScraperConfig configures how company websites are loaded.
type ScraperConfig struct {
	Mode              string
	PageTimeout       time.Duration
	SettleDelay       time.Duration
	BrowserControlURL string
	WorkerBaseURL     string
}

// PipelineConfig tunes the lead generation pipeline.
type PipelineConfig struct {
	Concurrency        int
	RecencyPolicy      string
	DefaultPhoneRegion string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL       string
	JWTSecret         string
	Port              string
	TokenTTL          time.Duration
	RateLimitGenerate RateLimitConfig
	Log               LogConfig
	AI                AIConfig
	Registry          RegistryConfig
	Scraper           ScraperConfig
	Pipeline          PipelineConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		Port:        getEnv("PORT", "8080"),
		TokenTTL:    parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		AI: AIConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  getEnv("AI_MODEL", "claude-sonnet-4-5-20250929"),
		},
		Registry: RegistryConfig{
			APIKey:  os.Getenv("COMPANIES_HOUSE_API_KEY"),
			BaseURL: strings.TrimRight(getEnv("COMPANIES_HOUSE_BASE_URL", "https://api.company-information.service.gov.uk"), "/"),
			Timeout: parseDuration(getEnv("REGISTRY_TIMEOUT", "10s"), 10*time.Second),
		},
		Scraper: ScraperConfig{
			Mode:              strings.ToLower(getEnv("SCRAPER_MODE", ScraperModeBrowser)),
			PageTimeout:       parseDuration(getEnv("SCRAPER_PAGE_TIMEOUT", "30s"), 30*time.Second),
			SettleDelay:       parseDuration(getEnv("SCRAPER_SETTLE_DELAY", "2s"), 2*time.Second),
			BrowserControlURL: os.Getenv("BROWSER_CONTROL_URL"),
			WorkerBaseURL:     os.Getenv("RENDER_WORKER_URL"),
		},
		Pipeline: PipelineConfig{
			RecencyPolicy:      strings.ToLower(getEnv("RECENCY_POLICY", RecencyPolicyFlag)),
			DefaultPhoneRegion: strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "GB")),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_GENERATE", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GENERATE value: %w", err)
	}
	cfg.RateLimitGenerate = rl

	registryRL, err := parseRateLimit(getEnv("REGISTRY_RATE_LIMIT", "600/5min"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_RATE_LIMIT value: %w", err)
	}
	cfg.Registry.RateLimit = registryRL

	if cfg.AI.MaxTokens, err = parsePositiveInt64(getEnv("AI_MAX_TOKENS", "4096")); err != nil {
		return nil, fmt.Errorf("invalid AI_MAX_TOKENS value: %w", err)
	}

	attempts, err := parsePositiveInt64(getEnv("REGISTRY_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_MAX_ATTEMPTS value: %w", err)
	}
	cfg.Registry.MaxAttempts = int(attempts)

	concurrency, err := parsePositiveInt64(getEnv("PIPELINE_CONCURRENCY", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_CONCURRENCY value: %w", err)
	}
	cfg.Pipeline.Concurrency = int(concurrency)

	switch cfg.Pipeline.RecencyPolicy {
	case RecencyPolicyFlag, RecencyPolicyExclude:
	default:
		return nil, fmt.Errorf("invalid RECENCY_POLICY value: %q", cfg.Pipeline.RecencyPolicy)
	}

	switch cfg.Scraper.Mode {
	case ScraperModeBrowser, ScraperModeHTTP:
	case ScraperModeWorker:
		if cfg.Scraper.WorkerBaseURL == "" {
			return nil, fmt.Errorf("RENDER_WORKER_URL is required when SCRAPER_MODE=worker")
		}
	default:
		return nil, fmt.Errorf("invalid SCRAPER_MODE value: %q", cfg.Scraper.Mode)
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	multiplier := 1
	if idx := strings.IndexFunc(unit, func(r rune) bool { return r < '0' || r > '9' }); idx > 0 {
		multiplier, err = strconv.Atoi(unit[:idx])
		if err != nil || multiplier <= 0 {
			return RateLimitConfig{}, fmt.Errorf("invalid interval multiplier: %s", unit)
		}
		unit = unit[idx:]
	}

	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: time.Duration(multiplier) * interval}, nil
}

func parsePositiveInt64(value string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}
