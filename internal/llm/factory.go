package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qpath/qpath/internal/config"
)

// Default model aliases per vendor.
const (
	DefaultAnthropicModel  = "claude-haiku"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultGeminiModel     = "gemini-flash"
	DefaultOpenRouterModel = "google/gemini-2.0-flash-exp"
)

// NewProvider builds the provider named by cfg.Provider, wrapped as
// caller → retry → logging → vendor.
func NewProvider(ctx context.Context, cfg config.MentorConfig, logger *slog.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(withModel(cfg.Anthropic, DefaultAnthropicModel))
	case "openai":
		base, err = NewOpenAIProvider(withModel(cfg.OpenAI, DefaultOpenAIModel))
	case "gemini":
		base, err = NewGeminiProvider(ctx, withModel(cfg.Gemini, DefaultGeminiModel))
	case "openrouter":
		base, err = NewOpenRouterProvider(withModel(cfg.OpenRouter, DefaultOpenRouterModel))
	case "mock":
		return NewMockProvider(), nil
	case "":
		return nil, fmt.Errorf("no mentor provider configured")
	default:
		return nil, fmt.Errorf("unknown mentor provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	retry := DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	return WithRetry(WithLogging(base, logger), retry, logger), nil
}

func withModel(pc config.ProviderConfig, def string) config.ProviderConfig {
	if pc.Model == "" {
		pc.Model = def
	}
	return pc
}
