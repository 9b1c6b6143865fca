// internal/llmclient/chat_client.go
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/pagehound/internal/config"
	"github.com/xkilldash9x/pagehound/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ChatClientImpl talks to an OpenAI-compatible chat endpoint (Ollama's
// /api/chat) with function-calling support, retries, and rate limiting.
type ChatClientImpl struct {
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
	maxRetries  uint64
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// -- Chat API request/response structures (internal to this file) --

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Tools    []Tool        `json:"tools,omitempty"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponsePayload struct {
	Message struct {
		Content   *string    `json:"content"`
		ToolCalls []ToolCall `json:"tool_calls"`
	} `json:"message"`
	Done bool `json:"done"`
}

// NewChatClient initializes the client from configuration.
func NewChatClient(cfg config.LLMConfig, logger *zap.Logger, metrics *observability.Metrics) *ChatClientImpl {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	return &ChatClientImpl{
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		maxRetries:  cfg.MaxRetries,
		httpClient: &http.Client{
			Timeout: cfg.APITimeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.Named("llm_client.chat"),
		metrics: metrics,
	}
}

// Chat sends the conversation and tool definitions to the model and returns
// its reply, retrying transient API failures.
func (c *ChatClientImpl) Chat(ctx context.Context, messages []ChatMessage, tools []Tool) (*ChatResponse, error) {
	request := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Tools:    tools,
		Options: &chatOptions{
			Temperature: c.temperature,
			NumPredict:  c.maxTokens,
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = 30 * time.Second

	var result *ChatResponse

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/chat", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create HTTP request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")

		startTime := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			c.logger.Warn("Network error during LLM request, retrying...", zap.Error(err))
			return fmt.Errorf("failed to execute HTTP request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return c.handleAPIError(resp.StatusCode, respBody)
		}

		var payload chatResponsePayload
		if err := json.Unmarshal(respBody, &payload); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response payload: %w", err))
		}

		content := ""
		if payload.Message.Content != nil {
			content = *payload.Message.Content
		}

		c.logger.Info("LLM chat turn complete",
			zap.Duration("duration", time.Since(startTime)),
			zap.Int("tool_calls", len(payload.Message.ToolCalls)),
		)

		result = &ChatResponse{
			Content:   content,
			ToolCalls: payload.Message.ToolCalls,
		}
		return nil
	}

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx))
	c.metrics.IncLLMRequest("openai", err == nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Generate satisfies Generator with a plain system+user exchange.
func (c *ChatClientImpl) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.Chat(ctx, []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, nil)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *ChatClientImpl) handleAPIError(statusCode int, body []byte) error {
	c.logger.Error("Chat API returned error status", zap.Int("status", statusCode), zap.String("response", string(body)))
	err := fmt.Errorf("chat API error: status %d, body: %s", statusCode, string(body))

	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusInternalServerError:
		return err // Transient errors, retry.
	default:
		return backoff.Permanent(err) // Permanent errors.
	}
}
