package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTextPrefersMainContent(t *testing.T) {
	page := `<html><body>
		<nav>Home | Products | About</nav>
		<main>  The   quick brown
			fox  </main>
		<footer>copyright</footer>
	</body></html>`

	result, err := CleanText(page)
	require.NoError(t, err)
	assert.Equal(t, "The quick brown fox", result.CleanText)
	assert.Equal(t, len("The quick brown fox"), result.Length)
	assert.Equal(t, "semantic_selectors", result.ExtractionMethod)
}

func TestCleanTextFallsBackToBody(t *testing.T) {
	page := `<html><body><div>no semantic containers here</div></body></html>`

	result, err := CleanText(page)
	require.NoError(t, err)
	assert.Equal(t, "no semantic containers here", result.CleanText)
}

func TestCleanTextTriesSelectorsInOrder(t *testing.T) {
	// An empty <main> must not shadow the article content.
	page := `<html><body>
		<main>   </main>
		<article>article wins</article>
	</body></html>`

	result, err := CleanText(page)
	require.NoError(t, err)
	assert.Equal(t, "article wins", result.CleanText)
}
