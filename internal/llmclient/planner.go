// internal/llmclient/planner.go
package llmclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/api/schemas"
)

const plannerSystemPrompt = `You are a web automation assistant. Your job is to create detailed task plans for browser automation.

Given a user's automation request, you should break it down into specific browser actions using the available tools.

Available browser actions:
- click: Click on an element using CSS selector
- type: Type text into an input field
- wait: Wait for a specified duration
- waitForElement: Wait for an element to appear
- scroll: Scroll the page in a direction
- screenshot: Take a screenshot
- getPageSource: Get the HTML source of the page
- executeScript: Execute custom JavaScript

Always provide step-by-step instructions with clear CSS selectors and expected outcomes.
Be specific about selectors - prefer IDs and classes over generic tags.
Include wait steps when necessary to ensure page elements are loaded.

Return your plan as a JSON object.`

// Planner turns a free-form automation request into a structured TaskPlan
// via the configured language model. Plan generation never fails: when the
// model is unreachable or its output cannot be parsed, a minimal fallback
// plan is produced instead.
type Planner struct {
	gen    Generator
	logger *zap.Logger
}

func NewPlanner(gen Generator, logger *zap.Logger) *Planner {
	return &Planner{gen: gen, logger: logger.Named("planner")}
}

// CreateTaskPlan asks the model for a plan and falls back to a canned
// navigate-wait-screenshot plan when that fails.
func (p *Planner) CreateTaskPlan(ctx context.Context, request schemas.AutomationRequest) schemas.TaskPlan {
	p.logger.Info("Creating task plan", zap.String("task", request.TaskDescription))

	content, err := p.gen.Generate(ctx, plannerSystemPrompt, formatPlannerPrompt(request))
	if err != nil {
		p.logger.Warn("Plan generation failed, using fallback", zap.Error(err))
		return createFallbackPlan(request)
	}

	if plan, ok := parseTaskPlan(content); ok {
		p.logger.Info("Parsed task plan", zap.Int("steps", len(plan.Steps)))
		return plan
	}

	p.logger.Warn("Could not parse task plan from model output, using fallback")
	return createFallbackPlan(request)
}

func formatPlannerPrompt(request schemas.AutomationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s", request.TaskDescription)

	if request.TargetURL != nil {
		fmt.Fprintf(&b, "\nTarget URL: %s", *request.TargetURL)
	}
	if len(request.Context) > 0 {
		encoded, err := json.Marshal(request.Context)
		if err == nil {
			fmt.Fprintf(&b, "\nAdditional context: %s", encoded)
		}
	}

	b.WriteString("\n\nPlease create a detailed task plan for this automation request. ")
	b.WriteString("Return your response as a JSON object with the following structure:\n")
	b.WriteString("{\n")
	b.WriteString("  \"description\": \"Overall task description\",\n")
	b.WriteString("  \"steps\": [\n")
	b.WriteString("    {\n")
	b.WriteString("      \"id\": \"unique_step_id\",\n")
	b.WriteString("      \"action\": {\"type\": \"Click\", \"params\": {\"selector\": \"css_selector\"}},\n")
	b.WriteString("      \"description\": \"What this step does\",\n")
	b.WriteString("      \"expected_outcome\": \"What should happen\"\n")
	b.WriteString("    }\n")
	b.WriteString("  ]\n")
	b.WriteString("}\n\n")
	b.WriteString("Available actions: Click, Type, Wait, WaitForElement, Scroll, Screenshot, GetPageSource, ExecuteScript")

	return b.String()
}

func createFallbackPlan(request schemas.AutomationRequest) schemas.TaskPlan {
	var steps []schemas.TaskStep

	if request.TargetURL != nil {
		url := *request.TargetURL
		steps = append(steps, schemas.TaskStep{
			ID:              "navigate",
			Action:          schemas.NewExecuteScript(fmt.Sprintf("window.location.href = '%s'", url)),
			Description:     fmt.Sprintf("Navigate to %s", url),
			ExpectedOutcome: strPtr("Page should load"),
		})
		steps = append(steps, schemas.TaskStep{
			ID:              "wait_load",
			Action:          schemas.NewWait(3000),
			Description:     "Wait for page to load",
			ExpectedOutcome: strPtr("Page elements should be available"),
		})
	}

	steps = append(steps, schemas.TaskStep{
		ID:              "screenshot",
		Action:          schemas.NewScreenshot(),
		Description:     "Take a screenshot for reference",
		ExpectedOutcome: strPtr("Screenshot captured"),
	})

	return schemas.TaskPlan{
		Description: fmt.Sprintf("Fallback plan for: %s", request.TaskDescription),
		Steps:       steps,
	}
}
