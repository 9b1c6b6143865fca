package mcp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/internal/observability"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	ts := NewToolServer(zap.NewNop(), observability.NewMetrics())
	ts.RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func rpcCall(t *testing.T, server *httptest.Server, body string) map[string]interface{} {
	t.Helper()
	resp, err := http.Post(server.URL+"/mcp", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func TestManifest(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/.well-known/mcp/manifest.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var manifest struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Tools   []struct {
			Name        string                 `json:"name"`
			InputSchema map[string]interface{} `json:"input_schema"`
		} `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&manifest))

	assert.Equal(t, "web-content-extractor", manifest.Name)
	assert.Equal(t, "1.0.0", manifest.Version)
	require.Len(t, manifest.Tools, 4)

	names := make([]string, 0, 4)
	for _, tool := range manifest.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.InputSchema, "manifest must carry the snake_case input_schema")
	}
	assert.Equal(t, []string{
		"extract_clean_text",
		"extract_product_data",
		"extract_by_selectors",
		"analyze_page_structure",
	}, names)
}

func TestInitialize(t *testing.T) {
	server := newTestServer(t)

	decoded := rpcCall(t, server, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	assert.Equal(t, "2.0", decoded["jsonrpc"])
	assert.Equal(t, float64(1), decoded["id"])

	result := decoded["result"].(map[string]interface{})
	caps := result["capabilities"].(map[string]interface{})
	assert.Equal(t, true, caps["tools"])
	assert.Equal(t, false, caps["resources"])
	assert.Equal(t, false, caps["prompts"])

	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "web-content-extractor", info["name"])
	assert.Equal(t, "1.0.0", info["version"])
}

func TestToolsListUsesCamelCaseSchemaKey(t *testing.T) {
	server := newTestServer(t)

	decoded := rpcCall(t, server, `{"jsonrpc":"2.0","id":"list-1","method":"tools/list"}`)
	result := decoded["result"].(map[string]interface{})
	tools := result["tools"].([]interface{})
	require.Len(t, tools, 4)

	first := tools[0].(map[string]interface{})
	assert.Contains(t, first, "inputSchema")
	assert.NotContains(t, first, "input_schema")
}

func TestMethodNotFound(t *testing.T) {
	server := newTestServer(t)

	decoded := rpcCall(t, server, `{"jsonrpc":"2.0","id":7,"method":"resources/list"}`)
	rpcErr := decoded["error"].(map[string]interface{})
	assert.Equal(t, float64(-32601), rpcErr["code"])
	assert.Equal(t, "Method not found", rpcErr["message"])
}

func TestToolCallMissingParams(t *testing.T) {
	server := newTestServer(t)

	decoded := rpcCall(t, server, `{"jsonrpc":"2.0","id":2,"method":"tools/call"}`)
	rpcErr := decoded["error"].(map[string]interface{})
	assert.Equal(t, float64(-32602), rpcErr["code"])
	assert.Equal(t, "Invalid params", rpcErr["message"])
}

func TestToolCallUnknownTool(t *testing.T) {
	server := newTestServer(t)

	decoded := rpcCall(t, server, `{
		"jsonrpc": "2.0", "id": 3, "method": "tools/call",
		"params": {"name": "summon_demon", "arguments": {}}
	}`)
	rpcErr := decoded["error"].(map[string]interface{})
	assert.Equal(t, float64(-32603), rpcErr["code"])
	assert.Equal(t, "Unknown tool: summon_demon", rpcErr["message"])
}

func TestToolCallMissingArgument(t *testing.T) {
	server := newTestServer(t)

	decoded := rpcCall(t, server, `{
		"jsonrpc": "2.0", "id": 4, "method": "tools/call",
		"params": {"name": "extract_clean_text", "arguments": {}}
	}`)
	rpcErr := decoded["error"].(map[string]interface{})
	assert.Equal(t, float64(-32603), rpcErr["code"])
	assert.Equal(t, "Missing html_content parameter", rpcErr["message"])
}

func TestToolCallCleanText(t *testing.T) {
	server := newTestServer(t)

	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      5,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name": "extract_clean_text",
			"arguments": map[string]interface{}{
				"html_content": "<html><body><main>hello   tools</main></body></html>",
			},
		},
	})
	require.NoError(t, err)

	decoded := rpcCall(t, server, string(body))
	require.Nil(t, decoded["error"])

	result := decoded["result"].(map[string]interface{})
	assert.Equal(t, "hello tools", result["clean_text"])
	assert.Equal(t, float64(len("hello tools")), result["length"])
	assert.Equal(t, "semantic_selectors", result["extraction_method"])
}

func TestToolCallExtractBySelectors(t *testing.T) {
	server := newTestServer(t)

	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      6,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name": "extract_by_selectors",
			"arguments": map[string]interface{}{
				"html_content": `<html><body><h1 class="t">Title</h1><li>a</li><li>b</li></body></html>`,
				"selectors":    map[string]string{"title": ".t", "items": "li"},
			},
		},
	})
	require.NoError(t, err)

	decoded := rpcCall(t, server, string(body))
	require.Nil(t, decoded["error"])

	result := decoded["result"].(map[string]interface{})
	assert.Equal(t, "Title", result["title"])
	assert.Equal(t, []interface{}{"a", "b"}, result["items"])
}
