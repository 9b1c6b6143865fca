package extract

// platformIndicator names an e-commerce platform and the selectors whose
// presence suggests it.
type platformIndicator struct {
	platform   string
	indicators []string
}

var platformIndicators = []platformIndicator{
	{"amazon", []string{".a-price", "#productTitle", "#acrPopover"}},
	{"shopify", []string{".product-form", ".price", ".product-title"}},
	{"woocommerce", []string{".woocommerce", ".price", ".product_title"}},
	{"magento", []string{".product-info-price", ".product-title", ".product-info-main"}},
}

// PatternMatch reports a detected platform and a 0-100 confidence score.
type PatternMatch struct {
	Platform   string  `json:"platform"`
	Confidence float64 `json:"confidence"`
}

// StructureResult is the output of AnalyzeStructure.
type StructureResult struct {
	DetectedPatterns   []PatternMatch         `json:"detected_patterns"`
	SuggestedSelectors map[string]interface{} `json:"suggested_selectors"`
	ContentSections    []string               `json:"content_sections"`
}

// AnalyzeStructure probes a page for markup characteristic of the common
// e-commerce platforms. Confidence is the fraction of a platform's
// indicator selectors that matched, as a percentage; platforms with no
// matches are left out.
func AnalyzeStructure(htmlContent string) (*StructureResult, error) {
	doc, err := parseDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	result := &StructureResult{
		DetectedPatterns:   []PatternMatch{},
		SuggestedSelectors: map[string]interface{}{},
		ContentSections:    []string{},
	}

	for _, candidate := range platformIndicators {
		matches := 0
		for _, indicator := range candidate.indicators {
			m := compileSelector(indicator)
			if m == nil {
				continue
			}
			if doc.FindMatcher(m).Length() > 0 {
				matches++
			}
		}
		if matches > 0 {
			result.DetectedPatterns = append(result.DetectedPatterns, PatternMatch{
				Platform:   candidate.platform,
				Confidence: float64(matches) / float64(len(candidate.indicators)) * 100,
			})
		}
	}

	return result, nil
}
