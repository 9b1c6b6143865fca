package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// BySelectors evaluates the named CSS selectors against a page and maps
// each key to its extracted text. A key that matched exactly one element
// gets a string; multiple matches get an array. Keys whose selector
// matched nothing, or did not parse, are omitted.
func BySelectors(htmlContent string, selectors map[string]string) (map[string]interface{}, error) {
	doc, err := parseDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	results := make(map[string]interface{}, len(selectors))
	for key, selector := range selectors {
		m := compileSelector(selector)
		if m == nil {
			continue
		}

		values := []string{}
		doc.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
			if text := nodeText(s); text != "" {
				values = append(values, text)
			}
		})

		switch len(values) {
		case 0:
			// No match, key stays absent.
		case 1:
			results[key] = values[0]
		default:
			results[key] = values
		}
	}
	return results, nil
}
