package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/models"
)

// GeminiService generates listing descriptions via the Gemini API.
type GeminiService struct {
	config  common.GeminiConfig
	client  *genai.Client
	timeout time.Duration
	logger  arbor.ILogger
}

// NewGeminiService creates the Gemini description service.
func NewGeminiService(ctx context.Context, cfg common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required (set GOOGLE_API_KEY or gemini.api_key in config)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	service := &GeminiService{
		config:  cfg,
		client:  client,
		timeout: common.ParseDurationOr(cfg.Timeout, 60*time.Second),
		logger:  logger,
	}

	logger.Debug().
		Str("model", cfg.Model).
		Float64("temperature", float64(cfg.Temperature)).
		Msg("Gemini description service initialized")

	return service, nil
}

// Provider returns the provider name.
func (s *GeminiService) Provider() string {
	return common.LLMProviderGemini
}

// GenerateDescription produces a sales description for a product.
func (s *GeminiService) GenerateDescription(ctx context.Context, product *models.Product) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromText(buildPrompt(product))},
		},
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if s.config.Temperature > 0 {
		config.Temperature = genai.Ptr(s.config.Temperature)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no description generated by Gemini")
	}

	return strings.TrimSpace(text), nil
}
