package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Companion / grader LLM
	AnthropicAPIKey string
	AnthropicModel  string

	// Storage
	DBPath string

	// Analyzer
	TokenizerName string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// FlowState
	BaselineDays     int
	SnapshotInterval int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first if present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("UNDERWRITER_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		DBPath: envOr("DB_PATH", "underwriter.db"),

		TokenizerName: envOr("TOKENIZER", "regex"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 26214400), // 25MB

		BaselineDays:     envInt("BASELINE_DAYS", 7),
		SnapshotInterval: envInt("SNAPSHOT_INTERVAL", 5),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 26214400
	}
	if cfg.BaselineDays <= 0 {
		cfg.BaselineDays = 7
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = 5
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// Validate checks the required settings. The Anthropic key is optional:
// without it the service runs with deterministic fallback feedback.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("UNDERWRITER_API_KEY is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
