// File: internal/mcp/dispatch.go
package mcp

import (
	"fmt"

	"github.com/xkilldash9x/pagehound/internal/extract"
)

// dispatch routes a tools/call to its implementation. Tool failures come
// back as plain errors and are surfaced as JSON-RPC tool errors.
func (s *ToolServer) dispatch(name string, args map[string]interface{}) (interface{}, error) {
	switch name {
	case "extract_clean_text":
		htmlContent, err := stringArg(args, "html_content")
		if err != nil {
			return nil, err
		}
		return extract.CleanText(htmlContent)

	case "extract_product_data":
		htmlContent, err := stringArg(args, "html_content")
		if err != nil {
			return nil, err
		}
		url, _ := args["url"].(string)
		return extract.ExtractProduct(htmlContent, url)

	case "extract_by_selectors":
		htmlContent, err := stringArg(args, "html_content")
		if err != nil {
			return nil, err
		}
		rawSelectors, ok := args["selectors"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("Missing selectors parameter")
		}
		selectors := make(map[string]string, len(rawSelectors))
		for key, value := range rawSelectors {
			if s, ok := value.(string); ok {
				selectors[key] = s
			}
		}
		return extract.BySelectors(htmlContent, selectors)

	case "analyze_page_structure":
		htmlContent, err := stringArg(args, "html_content")
		if err != nil {
			return nil, err
		}
		return extract.AnalyzeStructure(htmlContent)

	default:
		return nil, fmt.Errorf("Unknown tool: %s", name)
	}
}
