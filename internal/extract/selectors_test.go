package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBySelectorsScalarVersusArray(t *testing.T) {
	page := `<html><body>
		<h1 class="title">Only One</h1>
		<li class="tag">red</li>
		<li class="tag">blue</li>
		<li class="tag">green</li>
	</body></html>`

	results, err := BySelectors(page, map[string]string{
		"title":   ".title",
		"tags":    ".tag",
		"missing": ".nope",
	})
	require.NoError(t, err)

	assert.Equal(t, "Only One", results["title"], "single match collapses to a string")
	assert.Equal(t, []string{"red", "blue", "green"}, results["tags"])
	assert.NotContains(t, results, "missing", "no matches leaves the key absent")
}

func TestBySelectorsOmitsUnmatchedKeys(t *testing.T) {
	page := `<html><body><span class="price">$5</span></body></html>`

	results, err := BySelectors(page, map[string]string{
		"price":        ".price",
		"availability": ".stock-status",
		"rating":       ".stars",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"price": "$5"}, results)
}

func TestBySelectorsSkipsInvalidSelectors(t *testing.T) {
	page := `<html><body><p class="ok">fine</p></body></html>`

	results, err := BySelectors(page, map[string]string{
		"good": ".ok",
		"bad":  "p[",
	})
	require.NoError(t, err)

	assert.Equal(t, "fine", results["good"])
	assert.NotContains(t, results, "bad")
}
