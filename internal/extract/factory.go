package extract

import (
	"context"
	"fmt"

	"github.com/dgallion1/docmap/internal/config"
)

// NewGenerator builds the configured content generator.
func NewGenerator(ctx context.Context, cfg config.Config) (Generator, error) {
	switch cfg.GeneratorProvider {
	case "anthropic":
		return NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	case "gemini":
		g, err := NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return g, nil
	case "openai":
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", cfg.GeneratorProvider)
	}
}
