// internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/pagehound/internal/config"
	"github.com/xkilldash9x/pagehound/internal/observability"
)

// GeminiClient implements Generator on the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	cfg     config.LLMConfig
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGeminiClient initializes the client.
func NewGeminiClient(cfg config.LLMConfig, logger *zap.Logger, metrics *observability.Metrics) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		cfg:     cfg,
		logger:  logger.Named("llm_client.gemini"),
		metrics: metrics,
	}, nil
}

// Generate sends the prompts to the Gemini API and returns the generated
// content, retrying transient failures.
func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.cfg.Temperature)),
		MaxOutputTokens: int32(c.cfg.MaxTokens),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	b.MaxInterval = 30 * time.Second

	var responseContent string

	operation := func() error {
		startTime := time.Now()
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), genCfg)
		if err != nil {
			c.logger.Warn("Gemini request failed, retrying...", zap.Error(err))
			return fmt.Errorf("gemini API error: %w", err)
		}

		text := resp.Text()
		if text == "" {
			return backoff.Permanent(fmt.Errorf("gemini API returned no content"))
		}

		c.logger.Info("LLM generation complete (Gemini)",
			zap.Duration("duration", time.Since(startTime)),
		)
		responseContent = text
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	c.metrics.IncLLMRequest("gemini", err == nil)
	if err != nil {
		return "", err
	}
	return responseContent, nil
}
