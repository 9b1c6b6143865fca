package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProductFromSelectors(t *testing.T) {
	page := `<html><body>
		<h1 id="productTitle"> Mechanical Keyboard </h1>
		<span class="price">$129.99</span>
		<div id="availability"><span>In Stock</span></div>
		<img id="landingImage" src="https://img.example.com/kb.jpg">
	</body></html>`

	result, err := ExtractProduct(page, "https://shop.example.com/kb")
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/kb", result.URL)
	assert.Equal(t, "css_selectors_and_jsonld", result.ExtractionMethod)
	assert.NotEmpty(t, result.ExtractionTimestamp)

	data := result.ExtractedData
	assert.Equal(t, "Mechanical Keyboard", data["name"])
	assert.Equal(t, "$129.99", data["price"])
	assert.Equal(t, "In Stock", data["availability"])
	assert.Equal(t, "https://img.example.com/kb.jpg", data["image"])
	assert.NotContains(t, data, "brand")
}

func TestExtractProductFromJSONLDOnly(t *testing.T) {
	page := `<html><head>
		<script type="application/ld+json">
		{
			"@type": "Product",
			"name": "Wireless Mouse",
			"description": "A very quiet mouse.",
			"brand": {"name": "Clickco"},
			"offers": {"price": 24.5, "availability": "https://schema.org/InStock"},
			"aggregateRating": {"ratingValue": 4.6},
			"image": ["https://img.example.com/mouse-1.jpg", "https://img.example.com/mouse-2.jpg"]
		}
		</script>
	</head><body><p>bare page</p></body></html>`

	result, err := ExtractProduct(page, "https://shop.example.com/mouse")
	require.NoError(t, err)

	data := result.ExtractedData
	assert.Equal(t, "Wireless Mouse", data["name"])
	assert.Equal(t, "A very quiet mouse.", data["description"])
	assert.Equal(t, "Clickco", data["brand"])
	assert.Equal(t, 24.5, data["price"])
	assert.Equal(t, "https://schema.org/InStock", data["availability"])
	assert.Equal(t, 4.6, data["rating"])
	assert.Equal(t, "https://img.example.com/mouse-1.jpg", data["image_url"])
}

func TestExtractProductSelectorsWinOverJSONLD(t *testing.T) {
	page := `<html><head>
		<script type="application/ld+json">
		{"@type": "Product", "name": "Stale Name", "brand": "Clickco"}
		</script>
	</head><body>
		<h1 id="productTitle">Fresh Name</h1>
	</body></html>`

	result, err := ExtractProduct(page, "")
	require.NoError(t, err)

	data := result.ExtractedData
	assert.Equal(t, "Fresh Name", data["name"], "selector hits must not be overwritten")
	assert.Equal(t, "Clickco", data["brand"], "structured data fills the gaps")
}

func TestExtractProductHandlesJSONLDArray(t *testing.T) {
	page := `<html><head>
		<script type="application/ld+json">
		[{"@type": "BreadcrumbList"}, {"@type": "Product", "name": "Listed Product"}]
		</script>
	</head><body></body></html>`

	result, err := ExtractProduct(page, "")
	require.NoError(t, err)
	assert.Equal(t, "Listed Product", result.ExtractedData["name"])
}

func TestExtractProductIgnoresMalformedJSONLD(t *testing.T) {
	page := `<html><head>
		<script type="application/ld+json">{not json at all</script>
	</head><body><h1 id="productTitle">Still Works</h1></body></html>`

	result, err := ExtractProduct(page, "")
	require.NoError(t, err)
	assert.Equal(t, "Still Works", result.ExtractedData["name"])
}
