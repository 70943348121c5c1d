package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the engine and server settings. Everything has a sane
// default so the CLI works with no environment at all.
type Config struct {
	// Chunking defaults; the CLI and HTTP API may override per run.
	MaxTokens     int
	OverlapTokens int

	// Directory-mode parallelism.
	WorkerCount int

	// PDF
	PDFFallbackPdftotext bool

	// HTTP server (cmd/server only)
	Port   string
	APIKey string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first; real environment variables take
// precedence over it.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		MaxTokens:     envInt("MAX_TOKENS", 4000),
		OverlapTokens: envInt("OVERLAP_TOKENS", 200),

		WorkerCount: envInt("WORKER_COUNT", runtime.NumCPU()),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		Port:   envOr("PORT", "8090"),
		APIKey: os.Getenv("CHUNKDOC_API_KEY"),
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 200
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}

	return cfg
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MAX_TOKENS must be positive, got %d", c.MaxTokens)
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("OVERLAP_TOKENS must not be negative, got %d", c.OverlapTokens)
	}
	if c.OverlapTokens >= c.MaxTokens {
		return fmt.Errorf("OVERLAP_TOKENS (%d) must be smaller than MAX_TOKENS (%d)",
			c.OverlapTokens, c.MaxTokens)
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
