// internal/browser/taskplan.go
package browser

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/api/schemas"
	"github.com/xkilldash9x/pagehound/internal/observability"
)

// Engine executes task plans step by step against an ActionExecutor.
type Engine struct {
	stepDelay time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewEngine builds a plan executor with the given inter-step delay.
func NewEngine(stepDelay time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		stepDelay: stepDelay,
		logger:    logger.Named("task_engine"),
		metrics:   metrics,
	}
}

// ExecutePlan runs every step in order and returns one result per step,
// in input order. A failed step is recorded and execution continues.
func (e *Engine) ExecutePlan(ctx context.Context, exec ActionExecutor, plan schemas.TaskPlan) []schemas.TaskResult {
	e.logger.Info("Executing task plan",
		zap.String("description", plan.Description),
		zap.Int("steps", len(plan.Steps)),
	)

	results := make([]schemas.TaskResult, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		e.logger.Info("Executing step",
			zap.String("step_id", step.ID),
			zap.String("description", step.Description),
		)

		output, err := exec.Interact(ctx, step.Action)
		if err != nil {
			errMsg := err.Error()
			e.logger.Error("Step failed", zap.String("step_id", step.ID), zap.String("error", errMsg))
			e.metrics.IncAction(string(step.Action.Type), false)
			results = append(results, schemas.TaskResult{
				StepID:  step.ID,
				Success: false,
				Error:   &errMsg,
			})
			e.logger.Warn("Continuing execution despite step failure")
		} else {
			e.metrics.IncAction(string(step.Action.Type), true)
			results = append(results, schemas.TaskResult{
				StepID:  step.ID,
				Success: true,
				Output:  &output,
			})
		}

		// Small delay between steps.
		select {
		case <-time.After(e.stepDelay):
		case <-ctx.Done():
			// Remaining steps still get results so callers can account
			// for every step they submitted.
			for i := len(results); i < len(plan.Steps); i++ {
				errMsg := ctx.Err().Error()
				results = append(results, schemas.TaskResult{
					StepID:  plan.Steps[i].ID,
					Success: false,
					Error:   &errMsg,
				})
			}
			return results
		}
	}
	return results
}
