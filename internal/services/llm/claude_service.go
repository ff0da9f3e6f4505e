package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/models"
)

const defaultClaudeMaxTokens = 1024

// ClaudeService generates listing descriptions via the Anthropic API.
type ClaudeService struct {
	config  common.ClaudeConfig
	client  anthropic.Client
	timeout time.Duration
	logger  arbor.ILogger
}

// NewClaudeService creates the Claude description service.
func NewClaudeService(cfg common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY or claude.api_key in config)")
	}

	service := &ClaudeService{
		config:  cfg,
		client:  anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		timeout: common.ParseDurationOr(cfg.Timeout, 60*time.Second),
		logger:  logger,
	}

	logger.Debug().
		Str("model", cfg.Model).
		Float64("temperature", float64(cfg.Temperature)).
		Msg("Claude description service initialized")

	return service, nil
}

// Provider returns the provider name.
func (s *ClaudeService) Provider() string {
	return common.LLMProviderClaude
}

// GenerateDescription produces a sales description for a product.
func (s *ClaudeService) GenerateDescription(ctx context.Context, product *models.Product) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	maxTokens := s.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(product))),
		},
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no description generated by Claude")
	}

	return strings.TrimSpace(response.String()), nil
}
