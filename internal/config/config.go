package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Content generator
	GeneratorProvider string
	AnthropicAPIKey   string
	AnthropicModel    string
	GoogleAPIKey      string
	GeminiModel       string
	OpenAIAPIKey      string
	OpenAIModel       string

	// Worker pool
	WorkerCount           int
	MaxQueueSize          int
	MaxConcurrentGenerate int
	GenerateRPM           int

	// Upload limits
	MaxUploadBytes int64

	// Long-document summarization
	SummaryChunkSize    int
	SummaryChunkOverlap int

	// Mind map validation ceilings and prompt hints
	MindmapMaxDepth int
	MindmapMaxNodes int
	MindmapLevels   int
	MindmapChildren int

	FlashcardCount int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Billing
	StripeSecretKey string
	StripePriceID   string
	StripeAPIURL    string
	PublicBaseURL   string

	CORSOrigins []string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		SessionSecret: os.Getenv("DOCMAP_SESSION_SECRET"),
		SessionTTL:    envDuration("SESSION_TTL", 12*time.Hour),

		GeneratorProvider: strings.ToLower(envOr("GENERATOR_PROVIDER", "anthropic")),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       envOr("OPENAI_MODEL", "gpt-4o-mini"),

		WorkerCount:           envInt("WORKER_COUNT", 4),
		MaxQueueSize:          envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentGenerate: envInt("MAX_CONCURRENT_GENERATE", 4),
		GenerateRPM:           envInt("GENERATE_RPM", 60),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		SummaryChunkSize:    envInt("SUMMARY_CHUNK_SIZE", 6000),
		SummaryChunkOverlap: envInt("SUMMARY_CHUNK_OVERLAP", 200),

		MindmapMaxDepth: envInt("MINDMAP_MAX_DEPTH", 12),
		MindmapMaxNodes: envInt("MINDMAP_MAX_NODES", 2000),
		MindmapLevels:   envInt("MINDMAP_LEVELS", 4),
		MindmapChildren: envInt("MINDMAP_CHILDREN", 5),

		FlashcardCount: envInt("FLASHCARD_COUNT", 12),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripePriceID:   os.Getenv("STRIPE_PRICE_ID"),
		StripeAPIURL:    envOr("STRIPE_API_URL", "https://api.stripe.com"),
		PublicBaseURL:   envOr("PUBLIC_BASE_URL", "http://localhost:8090"),

		CORSOrigins: envList("CORS_ORIGINS", []string{"*"}),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentGenerate <= 0 {
		cfg.MaxConcurrentGenerate = 4
	}
	if cfg.GenerateRPM <= 0 {
		cfg.GenerateRPM = 60
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.SummaryChunkSize <= 0 {
		cfg.SummaryChunkSize = 6000
	}
	if cfg.SummaryChunkOverlap < 0 {
		cfg.SummaryChunkOverlap = 200
	}
	if cfg.MindmapMaxDepth <= 0 {
		cfg.MindmapMaxDepth = 12
	}
	if cfg.MindmapMaxNodes <= 0 {
		cfg.MindmapMaxNodes = 2000
	}
	if cfg.MindmapLevels <= 0 {
		cfg.MindmapLevels = 4
	}
	if cfg.MindmapChildren <= 0 {
		cfg.MindmapChildren = 5
	}
	if cfg.FlashcardCount <= 0 {
		cfg.FlashcardCount = 12
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}

	return cfg
}

// Validate checks settings the server cannot start without. A missing
// generator key is not fatal: generation requests fail with the provider
// message instead, so the rest of the app stays usable.
func (c Config) Validate() error {
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("DOCMAP_SESSION_SECRET must be at least 32 characters")
	}
	switch c.GeneratorProvider {
	case "anthropic", "gemini", "openai":
	default:
		return fmt.Errorf("GENERATOR_PROVIDER must be one of anthropic, gemini, openai (got %q)", c.GeneratorProvider)
	}
	if c.MindmapLevels > c.MindmapMaxDepth {
		return fmt.Errorf("MINDMAP_LEVELS (%d) exceeds MINDMAP_MAX_DEPTH (%d)", c.MindmapLevels, c.MindmapMaxDepth)
	}
	return nil
}

// BillingEnabled reports whether the payment boundary is configured.
func (c Config) BillingEnabled() bool {
	return c.StripeSecretKey != "" && c.StripePriceID != ""
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

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
