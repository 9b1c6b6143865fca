// internal/llmclient/client.go
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/internal/config"
	"github.com/xkilldash9x/pagehound/internal/observability"
)

// ChatMessage is one turn of a tool-calling conversation.
type ChatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Tool is a function definition offered to the model.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction carries a tool's name and JSON schema.
type ToolFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

// ToolCall is a function invocation emitted by the model. Arguments is a
// JSON-encoded string, per the OpenAI-compatible wire format.
type ToolCall struct {
	ID       *string          `json:"id,omitempty"`
	Type     *string          `json:"type,omitempty"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction names the function being called and its raw arguments.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatResponse is the model's reply to one chat request.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatClient is a conversational backend that supports function calling.
type ChatClient interface {
	Chat(ctx context.Context, messages []ChatMessage, tools []Tool) (*ChatResponse, error)
}

// Generator is a single-shot prompt/response backend, used for planning.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewGenerator builds the configured Generator backend.
func NewGenerator(cfg config.LLMConfig, logger *zap.Logger, metrics *observability.Metrics) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewChatClient(cfg, logger, metrics), nil
	case "gemini":
		return NewGeminiClient(cfg, logger, metrics)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: %q", cfg.Provider)
	}
}
