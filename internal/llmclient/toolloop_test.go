// internal/llmclient/toolloop_test.go
package llmclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/internal/mcp"
	"github.com/xkilldash9x/pagehound/internal/observability"
)

// scriptedChat replays a fixed sequence of responses and records the
// conversation it was given.
type scriptedChat struct {
	mu        sync.Mutex
	responses []*ChatResponse
	err       error
	calls     int
	lastMsgs  []ChatMessage
}

func (s *scriptedChat) Chat(_ context.Context, messages []ChatMessage, _ []Tool) (*ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastMsgs = messages
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func newToolServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	srv := mcp.NewToolServer(zap.NewNop(), observability.NewMetrics())
	srv.RegisterRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestExtractorManifestFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	chat := &scriptedChat{responses: []*ChatResponse{{Content: "never reached"}}}
	e := NewExtractor(chat, server.URL, 5, zap.NewNop(), nil)

	product := e.ExtractProductInfo(context.Background(), "https://shop.test/p/1", "<html></html>")

	require.NotNil(t, product.Name)
	assert.Equal(t, "Unable to extract product name with MCP tools", *product.Name)
	assert.Equal(t, 0, chat.calls)
}

func TestExtractorChatFailureFallsBack(t *testing.T) {
	server := newToolServer(t)

	chat := &scriptedChat{err: assert.AnError}
	e := NewExtractor(chat, server.URL, 5, zap.NewNop(), nil)

	product := e.ExtractProductInfo(context.Background(), "https://shop.test/p/1", "<html></html>")

	require.NotNil(t, product.RawLLMResponse)
	assert.Equal(t, "Fallback mode - MCP extraction failed", *product.RawLLMResponse)
	assert.Equal(t, 1, chat.calls)
}

func TestExtractorDispatchesToolCallThenParsesAnswer(t *testing.T) {
	var receivedArgs map[string]interface{}
	router := chi.NewRouter()
	srv := mcp.NewToolServer(zap.NewNop(), observability.NewMetrics())
	srv.RegisterRoutes(router)

	wrapped := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/mcp" {
			var rpc struct {
				Params struct {
					Arguments map[string]interface{} `json:"arguments"`
				} `json:"params"`
			}
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &rpc)
			receivedArgs = rpc.Params.Arguments
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		router.ServeHTTP(w, r)
	})
	server := httptest.NewServer(wrapped)
	t.Cleanup(server.Close)

	html := `<html><body><main>Widget page</main></body></html>`
	chat := &scriptedChat{responses: []*ChatResponse{
		{ToolCalls: []ToolCall{{Function: ToolCallFunction{
			Name:      "extract_clean_text",
			Arguments: `{}`,
		}}}},
		{Content: `Here is the result: {"name": "Widget", "price": "$9.99"}`},
	}}
	e := NewExtractor(chat, server.URL, 5, zap.NewNop(), nil)

	product := e.ExtractProductInfo(context.Background(), "https://shop.test/p/1", html)

	require.NotNil(t, product.Name)
	assert.Equal(t, "Widget", *product.Name)
	require.NotNil(t, product.Price)
	assert.Equal(t, "$9.99", *product.Price)
	assert.Equal(t, 2, chat.calls)

	// Omitted arguments are filled in before dispatch.
	require.NotNil(t, receivedArgs)
	assert.Equal(t, html, receivedArgs["html_content"])
	assert.Equal(t, "https://shop.test/p/1", receivedArgs["url"])

	// The tool exchange lands in the conversation as assistant + tool turns.
	require.GreaterOrEqual(t, len(chat.lastMsgs), 4)
	assert.Equal(t, "assistant", chat.lastMsgs[2].Role)
	assert.Equal(t, "tool", chat.lastMsgs[3].Role)
	assert.Contains(t, chat.lastMsgs[3].Content, "clean_text")
}

func TestExtractorTurnBound(t *testing.T) {
	server := newToolServer(t)

	// The model asks for a tool on every turn and never answers.
	chat := &scriptedChat{responses: []*ChatResponse{
		{ToolCalls: []ToolCall{{Function: ToolCallFunction{
			Name:      "extract_clean_text",
			Arguments: `{}`,
		}}}},
	}}
	e := NewExtractor(chat, server.URL, 3, zap.NewNop(), nil)

	product := e.ExtractProductInfo(context.Background(), "https://shop.test/p/1", "<html><body>x</body></html>")

	assert.Equal(t, 3, chat.calls)
	require.NotNil(t, product.Description)
	assert.Equal(t, "Product information extraction failed using Llama + MCP", *product.Description)
}

func TestExtractorUnknownToolFallsBack(t *testing.T) {
	server := newToolServer(t)

	chat := &scriptedChat{responses: []*ChatResponse{
		{ToolCalls: []ToolCall{{Function: ToolCallFunction{
			Name:      "summon_demons",
			Arguments: `{}`,
		}}}},
	}}
	e := NewExtractor(chat, server.URL, 5, zap.NewNop(), nil)

	product := e.ExtractProductInfo(context.Background(), "https://shop.test/p/1", "<html></html>")

	require.NotNil(t, product.Name)
	assert.Equal(t, "Unable to extract product name with MCP tools", *product.Name)
	assert.Equal(t, 1, chat.calls)
}
