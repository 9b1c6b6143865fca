package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint64) *uint64 { return &v }
func intPtr(v int) *int        { return &v }

func TestBrowserActionWireFormat(t *testing.T) {
	testCases := []struct {
		name     string
		action   BrowserAction
		expected string
	}{
		{
			name:     "click carries its selector under params",
			action:   NewClick("#buy-now"),
			expected: `{"type":"Click","params":{"selector":"#buy-now"}}`,
		},
		{
			name:     "type carries selector and text",
			action:   NewTypeText("input[name=q]", "mechanical keyboard"),
			expected: `{"type":"Type","params":{"selector":"input[name=q]","text":"mechanical keyboard"}}`,
		},
		{
			name:     "wait carries the duration",
			action:   NewWait(1500),
			expected: `{"type":"Wait","params":{"duration_ms":1500}}`,
		},
		{
			name:     "wait for element omits an unset timeout",
			action:   NewWaitForElement(".results", nil),
			expected: `{"type":"WaitForElement","params":{"selector":".results"}}`,
		},
		{
			name:     "wait for element keeps an explicit timeout",
			action:   NewWaitForElement(".results", uintPtr(5000)),
			expected: `{"type":"WaitForElement","params":{"selector":".results","timeout_ms":5000}}`,
		},
		{
			name:     "scroll carries direction and pixels",
			action:   NewScroll(ScrollDown, intPtr(250)),
			expected: `{"type":"Scroll","params":{"direction":"Down","pixels":250}}`,
		},
		{
			name:     "screenshot has no params key",
			action:   NewScreenshot(),
			expected: `{"type":"Screenshot"}`,
		},
		{
			name:     "get page source has no params key",
			action:   NewGetPageSource(),
			expected: `{"type":"GetPageSource"}`,
		},
		{
			name:     "execute script carries the script",
			action:   NewExecuteScript("document.title"),
			expected: `{"type":"ExecuteScript","params":{"script":"document.title"}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.action)
			require.NoError(t, err)
			assert.JSONEq(t, tc.expected, string(raw))

			var decoded BrowserAction
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, tc.action, decoded, "round trip must be the identity")
		})
	}
}

func TestBrowserActionUnmarshalRejectsUnknownType(t *testing.T) {
	var action BrowserAction
	err := json.Unmarshal([]byte(`{"type":"Teleport","params":{}}`), &action)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Teleport")
}

func TestScrollDirectionDelta(t *testing.T) {
	testCases := []struct {
		direction ScrollDirection
		pixels    int
		dx, dy    int
	}{
		{ScrollUp, 100, 0, -100},
		{ScrollDown, 100, 0, 100},
		{ScrollLeft, 40, -40, 0},
		{ScrollRight, 40, 40, 0},
	}
	for _, tc := range testCases {
		dx, dy := tc.direction.Delta(tc.pixels)
		assert.Equal(t, tc.dx, dx, "dx for %s", tc.direction)
		assert.Equal(t, tc.dy, dy, "dy for %s", tc.direction)
	}
}

func TestTaskPlanDecodesPlannerOutput(t *testing.T) {
	payload := `{
		"description": "search and capture",
		"steps": [
			{"id": "open_search", "description": "open the search box", "action": {"type": "Click", "params": {"selector": "#search"}}, "expected_outcome": "search box focused"},
			{"id": "capture", "description": "capture the page", "action": {"type": "Screenshot"}}
		]
	}`

	var plan TaskPlan
	require.NoError(t, json.Unmarshal([]byte(payload), &plan))
	assert.Equal(t, "search and capture", plan.Description)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "open_search", plan.Steps[0].ID)
	assert.Equal(t, ActionClick, plan.Steps[0].Action.Type)
	assert.Equal(t, "#search", plan.Steps[0].Action.Selector)
	require.NotNil(t, plan.Steps[0].ExpectedOutcome)
	assert.Equal(t, ActionScreenshot, plan.Steps[1].Action.Type)
	assert.Nil(t, plan.Steps[1].ExpectedOutcome)
}
