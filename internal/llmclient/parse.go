// internal/llmclient/parse.go
package llmclient

import (
	"strings"

	"github.com/xkilldash9x/pagehound/api/schemas"
)

func strPtr(s string) *string { return &s }

// extractJSONObject returns the substring from the first '{' to the last
// '}' of content, or "" when no object-shaped span exists.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// parseFinalProduct turns the model's final answer into a ProductInfo. It
// first tries the embedded JSON object, taking only string-typed fields;
// failing that it scans for "label: value" lines. The raw content is always
// retained for diagnosis.
func parseFinalProduct(content string) schemas.ProductInfo {
	if jsonStr := extractJSONObject(content); jsonStr != "" {
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err == nil {
			field := func(key string) *string {
				if v, ok := parsed[key].(string); ok {
					return &v
				}
				return nil
			}
			return schemas.ProductInfo{
				Name:           field("name"),
				Description:    field("description"),
				Price:          field("price"),
				Availability:   field("availability"),
				Brand:          field("brand"),
				Rating:         field("rating"),
				ImageURL:       field("image_url"),
				RawData:        strPtr(content),
				RawLLMResponse: strPtr(content),
			}
		}
	}
	return parseTextProduct(content)
}

// parseTextProduct is the line-oriented heuristic for conversational
// answers that never produced JSON.
func parseTextProduct(content string) schemas.ProductInfo {
	product := schemas.ProductInfo{
		RawData:        strPtr(content),
		RawLLMResponse: strPtr(content),
	}

	labelValue := func(line string) *string {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) < 2 {
			return nil
		}
		return strPtr(strings.TrimSpace(parts[1]))
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "name:") || strings.Contains(lower, "product:"):
			if v := labelValue(line); v != nil {
				product.Name = v
			}
		case strings.Contains(lower, "price:"):
			if v := labelValue(line); v != nil {
				product.Price = v
			}
		case strings.Contains(lower, "brand:"):
			if v := labelValue(line); v != nil {
				product.Brand = v
			}
		case strings.Contains(lower, "description:"):
			if v := labelValue(line); v != nil {
				product.Description = v
			}
		}
	}
	return product
}

// fallbackProduct is the terminal degraded result: returned when the tool
// conversation cannot produce anything usable.
func fallbackProduct() schemas.ProductInfo {
	return schemas.ProductInfo{
		Name:           strPtr("Unable to extract product name with MCP tools"),
		Description:    strPtr("Product information extraction failed using Llama + MCP"),
		RawLLMResponse: strPtr("Fallback mode - MCP extraction failed"),
	}
}

// parseTaskPlan extracts a TaskPlan JSON object from planner output.
// Returns false when content carries no parseable plan.
func parseTaskPlan(content string) (schemas.TaskPlan, bool) {
	jsonStr := extractJSONObject(content)
	if jsonStr == "" {
		return schemas.TaskPlan{}, false
	}
	var plan schemas.TaskPlan
	if err := json.Unmarshal([]byte(jsonStr), &plan); err != nil {
		return schemas.TaskPlan{}, false
	}
	return plan, true
}
