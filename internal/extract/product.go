package extract

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// productField pairs a result key with the CSS selectors tried in order.
type productField struct {
	name      string
	selectors []string
}

// productSelectors covers the markup of the common e-commerce platforms.
var productSelectors = []productField{
	{"name", []string{"#productTitle", "h1.a-size-large", ".product-title"}},
	{"price", []string{"[data-testid='price']", ".a-price-whole", ".price", ".current-price", "[data-price]"}},
	{"description", []string{"[data-feature-name='productDescription']", ".product-description", "#description"}},
	{"availability", []string{"#availability span", ".availability", "#stock-status"}},
	{"brand", []string{"[data-testid='brand']", ".brand", "#brand"}},
	{"rating", []string{"[data-testid='rating']", ".a-icon-alt", ".rating", ".star-rating"}},
	{"image", []string{"[data-testid='image']", "#landingImage", ".product-image img", ".main-image img"}},
}

// ProductResult is the output of ExtractProduct.
type ProductResult struct {
	URL                 string                 `json:"url"`
	ExtractedData       map[string]interface{} `json:"extracted_data"`
	ExtractionTimestamp string                 `json:"extraction_timestamp"`
	ExtractionMethod    string                 `json:"extraction_method"`
}

// ExtractProduct pulls product fields out of a page using platform CSS
// selectors, then overlays JSON-LD structured data for any fields the
// selectors did not fill.
func ExtractProduct(htmlContent, url string) (*ProductResult, error) {
	doc, err := parseDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	data := make(map[string]interface{})
	for _, field := range productSelectors {
		for _, selector := range field.selectors {
			m := compileSelector(selector)
			if m == nil {
				continue
			}
			doc.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				var value string
				if field.name == "image" {
					value, _ = s.Attr("src")
				} else {
					value = nodeText(s)
				}
				if value != "" {
					data[field.name] = value
					return false
				}
				return true
			})
			if _, ok := data[field.name]; ok {
				break
			}
		}
	}

	// Structured data fills gaps only; selector hits always win.
	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		var parsed interface{}
		if err := json.Unmarshal([]byte(s.Text()), &parsed); err != nil {
			return
		}
		for key, value := range productFromJSONLD(parsed) {
			if _, ok := data[key]; !ok {
				data[key] = value
			}
		}
	})

	return &ProductResult{
		URL:                 url,
		ExtractedData:       data,
		ExtractionTimestamp: time.Now().UTC().Format(time.RFC3339),
		ExtractionMethod:    "css_selectors_and_jsonld",
	}, nil
}

// productFromJSONLD extracts product fields from a parsed JSON-LD value,
// which may be a single object or an array of objects. Returns nil when no
// Product entity is present.
func productFromJSONLD(parsed interface{}) map[string]interface{} {
	items, ok := parsed.([]interface{})
	if !ok {
		items = []interface{}{parsed}
	}

	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok || item["@type"] != "Product" {
			continue
		}

		product := make(map[string]interface{})
		if name, ok := item["name"]; ok {
			product["name"] = name
		}
		if description, ok := item["description"]; ok {
			product["description"] = description
		}
		if brand, ok := item["brand"]; ok {
			switch b := brand.(type) {
			case string:
				product["brand"] = b
			case map[string]interface{}:
				if name, ok := b["name"]; ok {
					product["brand"] = name
				}
			}
		}
		if offers, ok := item["offers"].(map[string]interface{}); ok {
			if price, ok := offers["price"]; ok {
				product["price"] = price
			}
			if availability, ok := offers["availability"]; ok {
				product["availability"] = availability
			}
		}
		if rating, ok := item["aggregateRating"].(map[string]interface{}); ok {
			if value, ok := rating["ratingValue"]; ok {
				product["rating"] = value
			}
		}
		if image, ok := item["image"]; ok {
			switch img := image.(type) {
			case string:
				product["image_url"] = img
			case []interface{}:
				if len(img) > 0 {
					product["image_url"] = img[0]
				}
			}
		}
		return product
	}
	return nil
}
