// api/schemas/tools.go
package schemas

// ToolInfo describes one tool advertised by the tool server manifest.
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}
