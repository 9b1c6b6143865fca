// api/schemas/actions.go
package schemas

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ActionType discriminates the BrowserAction variants on the wire.
type ActionType string

const (
	ActionClick          ActionType = "Click"
	ActionTypeText       ActionType = "Type"
	ActionWait           ActionType = "Wait"
	ActionWaitForElement ActionType = "WaitForElement"
	ActionScroll         ActionType = "Scroll"
	ActionScreenshot     ActionType = "Screenshot"
	ActionGetPageSource  ActionType = "GetPageSource"
	ActionExecuteScript  ActionType = "ExecuteScript"
)

// ScrollDirection selects the axis and sign for a Scroll action.
type ScrollDirection string

const (
	ScrollUp    ScrollDirection = "Up"
	ScrollDown  ScrollDirection = "Down"
	ScrollLeft  ScrollDirection = "Left"
	ScrollRight ScrollDirection = "Right"
)

// Delta converts the direction and pixel amount to a signed (dx, dy) pair.
func (d ScrollDirection) Delta(pixels int) (int, int) {
	switch d {
	case ScrollUp:
		return 0, -pixels
	case ScrollLeft:
		return -pixels, 0
	case ScrollRight:
		return pixels, 0
	default: // Down is also the fallback for unrecognized directions.
		return 0, pixels
	}
}

// BrowserAction is one primitive browser operation. Exactly one variant is
// active, selected by Type; only the fields belonging to that variant are
// meaningful. On the wire it is a tagged union:
//
//	{"type": "Click", "params": {"selector": "#buy"}}
//	{"type": "Screenshot"}
//
// Variants without parameters omit the params key entirely.
type BrowserAction struct {
	Type ActionType

	// Click, Type, WaitForElement
	Selector string
	// Type
	Text string
	// Wait
	DurationMS uint64
	// WaitForElement; nil means the default timeout applies.
	TimeoutMS *uint64
	// Scroll; nil Pixels means the default scroll amount.
	Direction ScrollDirection
	Pixels    *int
	// ExecuteScript
	Script string
}

// Convenience constructors, used mainly by plan generation.

func NewClick(selector string) BrowserAction {
	return BrowserAction{Type: ActionClick, Selector: selector}
}

func NewTypeText(selector, text string) BrowserAction {
	return BrowserAction{Type: ActionTypeText, Selector: selector, Text: text}
}

func NewWait(durationMS uint64) BrowserAction {
	return BrowserAction{Type: ActionWait, DurationMS: durationMS}
}

func NewWaitForElement(selector string, timeoutMS *uint64) BrowserAction {
	return BrowserAction{Type: ActionWaitForElement, Selector: selector, TimeoutMS: timeoutMS}
}

func NewScroll(direction ScrollDirection, pixels *int) BrowserAction {
	return BrowserAction{Type: ActionScroll, Direction: direction, Pixels: pixels}
}

func NewScreenshot() BrowserAction {
	return BrowserAction{Type: ActionScreenshot}
}

func NewGetPageSource() BrowserAction {
	return BrowserAction{Type: ActionGetPageSource}
}

func NewExecuteScript(script string) BrowserAction {
	return BrowserAction{Type: ActionExecuteScript, Script: script}
}

// Per-variant wire payloads.

type clickParams struct {
	Selector string `json:"selector"`
}

type typeParams struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

type waitParams struct {
	DurationMS uint64 `json:"duration_ms"`
}

type waitForElementParams struct {
	Selector  string  `json:"selector"`
	TimeoutMS *uint64 `json:"timeout_ms,omitempty"`
}

type scrollParams struct {
	Direction ScrollDirection `json:"direction"`
	Pixels    *int            `json:"pixels,omitempty"`
}

type executeScriptParams struct {
	Script string `json:"script"`
}

type actionEnvelope struct {
	Type   ActionType          `json:"type"`
	Params jsoniter.RawMessage `json:"params,omitempty"`
}

// MarshalJSON encodes the active variant as {"type": ..., "params": {...}}.
func (a BrowserAction) MarshalJSON() ([]byte, error) {
	env := actionEnvelope{Type: a.Type}

	var params interface{}
	switch a.Type {
	case ActionClick:
		params = clickParams{Selector: a.Selector}
	case ActionTypeText:
		params = typeParams{Selector: a.Selector, Text: a.Text}
	case ActionWait:
		params = waitParams{DurationMS: a.DurationMS}
	case ActionWaitForElement:
		params = waitForElementParams{Selector: a.Selector, TimeoutMS: a.TimeoutMS}
	case ActionScroll:
		params = scrollParams{Direction: a.Direction, Pixels: a.Pixels}
	case ActionScreenshot, ActionGetPageSource:
		// No parameters.
	case ActionExecuteScript:
		params = executeScriptParams{Script: a.Script}
	default:
		return nil, fmt.Errorf("unknown browser action type: %q", a.Type)
	}

	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		env.Params = raw
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes the tagged union, rejecting unknown action types.
func (a *BrowserAction) UnmarshalJSON(data []byte) error {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	decoded := BrowserAction{Type: env.Type}
	switch env.Type {
	case ActionClick:
		var p clickParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return fmt.Errorf("invalid Click params: %w", err)
		}
		decoded.Selector = p.Selector
	case ActionTypeText:
		var p typeParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return fmt.Errorf("invalid Type params: %w", err)
		}
		decoded.Selector = p.Selector
		decoded.Text = p.Text
	case ActionWait:
		var p waitParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return fmt.Errorf("invalid Wait params: %w", err)
		}
		decoded.DurationMS = p.DurationMS
	case ActionWaitForElement:
		var p waitForElementParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return fmt.Errorf("invalid WaitForElement params: %w", err)
		}
		decoded.Selector = p.Selector
		decoded.TimeoutMS = p.TimeoutMS
	case ActionScroll:
		var p scrollParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return fmt.Errorf("invalid Scroll params: %w", err)
		}
		decoded.Direction = p.Direction
		decoded.Pixels = p.Pixels
	case ActionScreenshot, ActionGetPageSource:
		// No parameters to decode.
	case ActionExecuteScript:
		var p executeScriptParams
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return fmt.Errorf("invalid ExecuteScript params: %w", err)
		}
		decoded.Script = p.Script
	default:
		return fmt.Errorf("unknown browser action type: %q", env.Type)
	}

	*a = decoded
	return nil
}

// String returns a short human-readable description, used in logs.
func (a BrowserAction) String() string {
	switch a.Type {
	case ActionClick:
		return fmt.Sprintf("Click(%s)", a.Selector)
	case ActionTypeText:
		return fmt.Sprintf("Type(%s)", a.Selector)
	case ActionWait:
		return fmt.Sprintf("Wait(%dms)", a.DurationMS)
	case ActionWaitForElement:
		return fmt.Sprintf("WaitForElement(%s)", a.Selector)
	case ActionScroll:
		return fmt.Sprintf("Scroll(%s)", a.Direction)
	case ActionExecuteScript:
		return "ExecuteScript"
	default:
		return string(a.Type)
	}
}
