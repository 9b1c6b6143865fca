// internal/browser/taskplan_test.go
package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/api/schemas"
)

// fakeExecutor fails actions whose selector is "#missing" and echoes the
// action type otherwise.
type fakeExecutor struct {
	calls []schemas.BrowserAction
}

func (f *fakeExecutor) Interact(_ context.Context, action schemas.BrowserAction) (string, error) {
	f.calls = append(f.calls, action)
	if action.Selector == "#missing" {
		return "", errors.New("Element not found #missing")
	}
	return "ok: " + string(action.Type), nil
}

func newTestEngine() *Engine {
	return NewEngine(time.Millisecond, zap.NewNop(), nil)
}

func TestExecutePlanOneResultPerStep(t *testing.T) {
	engine := newTestEngine()
	exec := &fakeExecutor{}

	plan := schemas.TaskPlan{
		Description: "three step plan",
		Steps: []schemas.TaskStep{
			{ID: "a", Action: schemas.NewClick("#ok"), Description: "click"},
			{ID: "b", Action: schemas.NewClick("#missing"), Description: "click missing"},
			{ID: "c", Action: schemas.NewScreenshot(), Description: "snap"},
		},
	}

	results := engine.ExecutePlan(context.Background(), exec, plan)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{results[0].StepID, results[1].StepID, results[2].StepID})

	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].Output)
	assert.Equal(t, "ok: Click", *results[0].Output)
	assert.Nil(t, results[0].Error)

	assert.False(t, results[1].Success)
	assert.Nil(t, results[1].Output)
	require.NotNil(t, results[1].Error)
	assert.Contains(t, *results[1].Error, "Element not found")

	// Execution continues past the failure.
	assert.True(t, results[2].Success)
	assert.Len(t, exec.calls, 3)
}

func TestExecutePlanEmptyPlan(t *testing.T) {
	engine := newTestEngine()
	results := engine.ExecutePlan(context.Background(), &fakeExecutor{}, schemas.TaskPlan{Description: "empty"})
	assert.Empty(t, results)
}

func TestExecutePlanCancelledContextStillAccountsForSteps(t *testing.T) {
	engine := NewEngine(50*time.Millisecond, zap.NewNop(), nil)
	exec := &fakeExecutor{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := schemas.TaskPlan{
		Steps: []schemas.TaskStep{
			{ID: "a", Action: schemas.NewScreenshot()},
			{ID: "b", Action: schemas.NewScreenshot()},
		},
	}

	results := engine.ExecutePlan(ctx, exec, plan)

	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	require.NotNil(t, results[1].Error)
}

func TestRenderScriptResult(t *testing.T) {
	assert.Equal(t, `"X"`, renderScriptResult([]byte(`"X"`)))
	assert.Equal(t, "42", renderScriptResult([]byte("42")))
	assert.Equal(t, "null", renderScriptResult(nil))
	assert.Equal(t, `{"a":1}`, renderScriptResult([]byte(`{"a":1}`)))
}
