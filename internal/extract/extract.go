// Package extract implements the HTML parsing tools exposed by the tool
// server: clean-text extraction, product data extraction with JSON-LD
// overlay, ad-hoc selector extraction, and page structure analysis.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// mainContentSelectors is tried in order before falling back to <body>.
var mainContentSelectors = []string{
	"main",
	"article",
	"[role='main']",
	".main-content",
	"#main-content",
	".content",
	"#content",
}

// CleanTextResult is the output of CleanText.
type CleanTextResult struct {
	CleanText        string `json:"clean_text"`
	Length           int    `json:"length"`
	ExtractionMethod string `json:"extraction_method"`
}

// parseDocument builds a goquery document from raw HTML.
func parseDocument(htmlContent string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
}

// nodeText collects the text nodes under a selection's first element,
// joined with single spaces.
func nodeText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(s.Nodes[0])
	return strings.Join(parts, " ")
}

// collapseWhitespace reduces all runs of whitespace to single spaces and
// trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// compileSelector compiles a CSS selector, returning nil for selectors that
// do not parse. Callers skip nil selectors rather than failing the whole
// extraction.
func compileSelector(selector string) goquery.Matcher {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	return m
}

// CleanText extracts the readable text of a page. It prefers semantic main
// content containers and falls back to the whole body, then collapses
// whitespace.
func CleanText(htmlContent string) (*CleanTextResult, error) {
	doc, err := parseDocument(htmlContent)
	if err != nil {
		return nil, err
	}

	var extracted string
	for _, selector := range mainContentSelectors {
		m := compileSelector(selector)
		if m == nil {
			continue
		}
		doc.FindMatcher(m).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := nodeText(s); text != "" {
				extracted = text
				return false
			}
			return true
		})
		if extracted != "" {
			break
		}
	}

	if extracted == "" {
		extracted = nodeText(doc.Find("body").First())
	}

	cleaned := collapseWhitespace(extracted)
	return &CleanTextResult{
		CleanText:        cleaned,
		Length:           len(cleaned),
		ExtractionMethod: "semantic_selectors",
	}, nil
}
