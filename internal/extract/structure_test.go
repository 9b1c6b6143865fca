package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findPattern(patterns []PatternMatch, platform string) *PatternMatch {
	for i := range patterns {
		if patterns[i].Platform == platform {
			return &patterns[i]
		}
	}
	return nil
}

func TestAnalyzeStructureDetectsPlatforms(t *testing.T) {
	page := `<html><body>
		<span id="productTitle">title</span>
		<span class="a-price">$10</span>
		<div id="acrPopover"></div>
		<div class="price">$10</div>
	</body></html>`

	result, err := AnalyzeStructure(page)
	require.NoError(t, err)

	amazon := findPattern(result.DetectedPatterns, "amazon")
	require.NotNil(t, amazon, "all three amazon indicators are present")
	assert.InDelta(t, 100.0, amazon.Confidence, 0.01)

	// .price alone matches one of shopify's three indicators.
	shopify := findPattern(result.DetectedPatterns, "shopify")
	require.NotNil(t, shopify)
	assert.InDelta(t, 100.0/3, shopify.Confidence, 0.01)

	assert.Nil(t, findPattern(result.DetectedPatterns, "magento"), "zero-match platforms are omitted")
}

func TestAnalyzeStructureEmptyPage(t *testing.T) {
	result, err := AnalyzeStructure(`<html><body><p>nothing commercial</p></body></html>`)
	require.NoError(t, err)

	assert.Empty(t, result.DetectedPatterns)
	assert.NotNil(t, result.DetectedPatterns, "patterns must encode as an empty array")
	assert.NotNil(t, result.SuggestedSelectors)
	assert.NotNil(t, result.ContentSections)
}
