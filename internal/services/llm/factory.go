package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/interfaces"
)

// NewDescriptionService creates the configured description provider.
func NewDescriptionService(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.DescriptionService, error) {
	logger.Info().Str("provider", cfg.LLM.Provider).Msg("Initializing description service")

	switch cfg.LLM.Provider {
	case common.LLMProviderClaude:
		return NewClaudeService(cfg.Claude, logger)
	case common.LLMProviderGemini:
		return NewGeminiService(ctx, cfg.Gemini, logger)
	default:
		return nil, fmt.Errorf("invalid llm provider '%s': must be '%s' or '%s'",
			cfg.LLM.Provider, common.LLMProviderClaude, common.LLMProviderGemini)
	}
}
