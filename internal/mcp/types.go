// File: internal/mcp/types.go
package mcp

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON-RPC 2.0 error codes used by the tool server.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolError      = -32603
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      interface{}         `json:"id"`
	Method  string              `json:"method"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope. ID mirrors the request's
// id, including null.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// toolCallParams is the params shape of a tools/call request.
type toolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}
