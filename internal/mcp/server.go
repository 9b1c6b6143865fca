// File: internal/mcp/server.go
package mcp

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/api/schemas"
	"github.com/xkilldash9x/pagehound/internal/observability"
)

const (
	serverName    = "web-content-extractor"
	serverVersion = "1.0.0"
)

// ToolServer exposes the HTML parsing tools over a JSON-RPC 2.0 endpoint,
// plus a well-known manifest for discovery.
type ToolServer struct {
	log     *zap.Logger
	metrics *observability.Metrics
	tools   []schemas.ToolInfo
}

// NewToolServer creates a ToolServer advertising the extraction tool set.
func NewToolServer(logger *zap.Logger, metrics *observability.Metrics) *ToolServer {
	return &ToolServer{
		log:     logger.Named("mcp"),
		metrics: metrics,
		tools:   toolCatalog(),
	}
}

// toolCatalog describes every tool the server dispatches.
func toolCatalog() []schemas.ToolInfo {
	htmlProp := func(description string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": description}
	}
	return []schemas.ToolInfo{
		{
			Name:        "extract_clean_text",
			Description: "Extract clean, readable text content from HTML",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"html_content": htmlProp("Raw HTML content to clean"),
				},
				"required": []string{"html_content"},
			},
		},
		{
			Name:        "extract_product_data",
			Description: "Extract structured product information using CSS selectors",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"html_content": htmlProp("HTML content to parse"),
					"url":          htmlProp("Source URL for context"),
				},
				"required": []string{"html_content"},
			},
		},
		{
			Name:        "extract_by_selectors",
			Description: "Extract specific content using CSS selectors",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"html_content": htmlProp("HTML content to parse"),
					"selectors": map[string]interface{}{
						"type":                 "object",
						"description":          "CSS selectors to extract data",
						"additionalProperties": map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"html_content", "selectors"},
			},
		},
		{
			Name:        "analyze_page_structure",
			Description: "Analyze HTML structure and suggest extraction strategies",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"html_content": htmlProp("HTML content to analyze"),
				},
				"required": []string{"html_content"},
			},
		},
	}
}

// RegisterRoutes mounts the RPC endpoint and the discovery manifest.
func (s *ToolServer) RegisterRoutes(r chi.Router) {
	r.Post("/mcp", s.HandleRPC)
	r.Get("/.well-known/mcp/manifest.json", s.HandleManifest)
}

// HandleManifest serves the discovery document clients use to learn the
// tool set before speaking JSON-RPC.
func (s *ToolServer) HandleManifest(w http.ResponseWriter, _ *http.Request) {
	manifest := map[string]interface{}{
		"name":        serverName,
		"version":     serverVersion,
		"description": "Specialized tools for web content extraction and parsing",
		"tools":       s.tools,
	}
	s.writeJSON(w, http.StatusOK, manifest)
}

// HandleRPC is the single JSON-RPC 2.0 entry point.
func (s *ToolServer) HandleRPC(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: codeInvalidParams, Message: "Invalid params"},
		})
		return
	}

	s.log.Debug("Received RPC request", zap.String("method", req.Method))

	var resp Response
	switch req.Method {
	case "initialize":
		resp = s.handleInitialize(&req)
	case "tools/list":
		resp = s.handleToolsList(&req)
	case "tools/call":
		resp = s.handleToolCall(&req)
	default:
		resp = Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: codeMethodNotFound, Message: "Method not found"},
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *ToolServer) handleInitialize(req *Request) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"capabilities": map[string]interface{}{
				"tools":     true,
				"resources": false,
				"prompts":   false,
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": serverVersion,
			},
		},
	}
}

func (s *ToolServer) handleToolsList(req *Request) Response {
	// tools/list uses the camelCase inputSchema key, unlike the manifest.
	tools := make([]map[string]interface{}, 0, len(s.tools))
	for _, tool := range s.tools {
		tools = append(tools, map[string]interface{}{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		})
	}
	return Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  map[string]interface{}{"tools": tools},
	}
}

func (s *ToolServer) handleToolCall(req *Request) Response {
	if len(req.Params) == 0 {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: codeInvalidParams, Message: "Invalid params"},
		}
	}

	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: codeInvalidParams, Message: "Invalid params"},
		}
	}

	s.metrics.IncToolCall(params.Name)
	result, err := s.dispatch(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("Tool call failed", zap.String("tool", params.Name), zap.Error(err))
		s.metrics.IncError("tool")
		return Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: codeToolError, Message: err.Error()},
		}
	}

	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *ToolServer) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to encode response", zap.Error(err))
	}
}

// stringArg pulls a required string argument out of a tool call.
func stringArg(args map[string]interface{}, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok {
		return "", fmt.Errorf("Missing %s parameter", key)
	}
	return value, nil
}
