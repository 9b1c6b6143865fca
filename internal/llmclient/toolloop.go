// internal/llmclient/toolloop.go
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/api/schemas"
	"github.com/xkilldash9x/pagehound/internal/observability"
)

const extractionSystemPrompt = `You are an expert web scraping assistant with access to specialized HTML parsing tools. Your job is to extract product information from e-commerce websites using the available tools.

Available tools:
- analyze_page_structure: Identifies the type of e-commerce platform and suggests extraction strategies
- extract_product_data: Uses CSS selectors and JSON-LD to extract structured product information
- extract_clean_text: Removes clutter and extracts clean, readable content
- extract_by_selectors: Extract specific data using custom CSS selectors

Best practices:
1. Always start by analyzing the page structure to understand the website type
2. Use extract_product_data for comprehensive product extraction
3. If extract_product_data doesn't work well, use extract_by_selectors with specific selectors
4. Focus on extracting: name, price, description, availability, brand, rating, image URL
5. Return results in a clear, structured format

Work step by step and use the most appropriate tools for each task.`

// Extractor drives the bounded tool-calling conversation between the chat
// model and the extraction tool server. A run always yields a ProductInfo:
// backend and parse failures degrade to a fallback value instead of
// propagating.
type Extractor struct {
	chat        ChatClient
	mcpEndpoint string
	httpClient  *http.Client
	logger      *zap.Logger
	metrics     *observability.Metrics
	maxTurns    int
}

// NewExtractor wires an Extractor against a chat backend and the tool
// server base URL.
func NewExtractor(chat ChatClient, mcpEndpoint string, maxTurns int, logger *zap.Logger, metrics *observability.Metrics) *Extractor {
	if maxTurns <= 0 {
		maxTurns = 5
	}
	return &Extractor{
		chat:        chat,
		mcpEndpoint: mcpEndpoint,
		httpClient:  &http.Client{},
		logger:      logger.Named("extractor"),
		metrics:     metrics,
		maxTurns:    maxTurns,
	}
}

// ExtractProductInfo runs the full tool conversation for one page. It never
// returns an error; every failure path degrades to the fallback product.
func (e *Extractor) ExtractProductInfo(ctx context.Context, url, htmlContent string) schemas.ProductInfo {
	e.logger.Info("Extracting product information",
		zap.String("url", url),
		zap.Int("html_length", len(htmlContent)),
	)

	tools, err := e.fetchTools(ctx)
	if err != nil {
		// Manifest fetch is fatal to the run; it is not retried.
		e.logger.Warn("Failed to fetch tool manifest, using fallback", zap.Error(err))
		e.metrics.IncError("mcp")
		return fallbackProduct()
	}

	userPrompt := fmt.Sprintf(
		"I need to extract product information from this web page. The URL is: %s\n\n"+
			"I have the raw HTML content available. Please use the appropriate tools to:\n"+
			"1. First analyze the page structure to understand what kind of site this is\n"+
			"2. Extract clean, structured product data\n"+
			"3. Return the product information in a clear format\n\n"+
			"Start by analyzing the page structure.",
		url,
	)

	messages := []ChatMessage{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: userPrompt},
	}

	for turn := 0; turn < e.maxTurns; turn++ {
		resp, err := e.chat.Chat(ctx, messages, tools)
		if err != nil {
			e.logger.Warn("Chat backend failed, using fallback", zap.Error(err))
			return fallbackProduct()
		}

		if len(resp.ToolCalls) > 0 {
			for _, call := range resp.ToolCalls {
				result, err := e.executeTool(ctx, call, htmlContent, url)
				if err != nil {
					e.logger.Warn("Tool execution failed, using fallback",
						zap.String("tool", call.Function.Name), zap.Error(err))
					return fallbackProduct()
				}

				messages = append(messages, ChatMessage{
					Role:      "assistant",
					Content:   resp.Content,
					ToolCalls: []ToolCall{call},
				})
				messages = append(messages, ChatMessage{
					Role:    "tool",
					Content: result,
				})
			}
			continue
		}

		if resp.Content != "" {
			return parseFinalProduct(resp.Content)
		}
		// Neither tool calls nor content: keep going until the turn bound.
	}

	e.logger.Warn("Turn bound reached without a final answer, using fallback")
	return fallbackProduct()
}

// fetchTools loads the tool manifest and converts it to function
// definitions for the chat model.
func (e *Extractor) fetchTools(ctx context.Context) ([]Tool, error) {
	manifestURL := e.mcpEndpoint + "/.well-known/mcp/manifest.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, manifestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch MCP manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch MCP manifest: status %d", resp.StatusCode)
	}

	var manifest struct {
		Tools []schemas.ToolInfo `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to parse MCP manifest: %w", err)
	}

	tools := make([]Tool, 0, len(manifest.Tools))
	for _, info := range manifest.Tools {
		tools = append(tools, Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        info.Name,
				Description: info.Description,
				Parameters:  info.InputSchema,
			},
		})
	}
	e.logger.Info("Loaded MCP tools", zap.Int("count", len(tools)))
	return tools, nil
}

// executeTool dispatches one model-emitted tool call through the JSON-RPC
// endpoint, injecting html_content and url when the model omitted them.
func (e *Extractor) executeTool(ctx context.Context, call ToolCall, htmlContent, url string) (string, error) {
	arguments := map[string]interface{}{}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &arguments); err != nil {
		arguments = map[string]interface{}{}
	}
	if _, ok := arguments["html_content"]; !ok {
		arguments["html_content"] = htmlContent
	}
	if _, ok := arguments["url"]; !ok {
		arguments["url"] = url
	}

	rpcRequest := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      call.Function.Name,
			"arguments": arguments,
		},
	}

	body, err := json.Marshal(rpcRequest)
	if err != nil {
		return "", err
	}

	e.logger.Info("Executing MCP tool", zap.String("tool", call.Function.Name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.mcpEndpoint+"/mcp", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call MCP tool: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read MCP response: %w", err)
	}

	var rpcResponse struct {
		Result interface{}            `json:"result"`
		Error  map[string]interface{} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &rpcResponse); err != nil {
		return "", fmt.Errorf("failed to parse MCP response: %w", err)
	}

	if rpcResponse.Error != nil {
		return "", fmt.Errorf("MCP tool error: %v", rpcResponse.Error)
	}
	if rpcResponse.Result == nil {
		return "", fmt.Errorf("no result from MCP tool")
	}

	pretty, err := json.MarshalIndent(rpcResponse.Result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty), nil
}
