// internal/browser/executor.go
package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	actionTimeout       = 30 * time.Second
	elementPollInterval = 100 * time.Millisecond
	defaultWaitTimeout  = 30000 // ms
)

// ActionExecutor performs a single browser action and returns its textual
// output. Session implements it against a live page; tests substitute fakes.
type ActionExecutor interface {
	Interact(ctx context.Context, action schemas.BrowserAction) (string, error)
}

// Interact dispatches one action against the page. The returned string is
// the action's human-readable output, surfaced verbatim in API responses.
func (s *Session) Interact(ctx context.Context, action schemas.BrowserAction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch action.Type {
	case schemas.ActionClick:
		return s.click(action.Selector)
	case schemas.ActionTypeText:
		return s.typeText(action.Selector, action.Text)
	case schemas.ActionWait:
		return s.wait(ctx, action.DurationMS)
	case schemas.ActionWaitForElement:
		return s.waitForElement(ctx, action.Selector, action.TimeoutMS)
	case schemas.ActionScroll:
		return s.scroll(action.Direction, action.Pixels)
	case schemas.ActionScreenshot:
		return s.screenshot()
	case schemas.ActionGetPageSource:
		s.logger.Info("Getting page source")
		return s.pageSourceLocked()
	case schemas.ActionExecuteScript:
		return s.executeScript(action.Script)
	default:
		return "", fmt.Errorf("unsupported action type: %s", action.Type)
	}
}

// elementExists checks for a selector match without waiting.
func (s *Session) elementExists(runCtx context.Context, selector string) (bool, error) {
	var found bool
	script := fmt.Sprintf("document.querySelector(%s) !== null", jsString(selector))
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (s *Session) click(selector string) (string, error) {
	s.logger.Info("Clicking element", zap.String("selector", selector))

	runCtx, cancel := context.WithTimeout(s.pageCtx, actionTimeout)
	defer cancel()

	found, err := s.elementExists(runCtx, selector)
	if err != nil || !found {
		return "", fmt.Errorf("Element not found %s", selector)
	}
	if err := chromedp.Run(runCtx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("Failed to click element: %w", err)
	}
	return "Click successful", nil
}

func (s *Session) typeText(selector, text string) (string, error) {
	s.logger.Info("Typing into element", zap.String("selector", selector), zap.String("text", text))

	runCtx, cancel := context.WithTimeout(s.pageCtx, actionTimeout)
	defer cancel()

	found, err := s.elementExists(runCtx, selector)
	if err != nil || !found {
		return "", fmt.Errorf("Element not found %s", selector)
	}
	if err := chromedp.Run(runCtx, chromedp.Focus(selector, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("Failed to focus element: %w", err)
	}
	if err := chromedp.Run(runCtx, chromedp.SendKeys(selector, text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("Failed to type text: %w", err)
	}
	return "Text input successful", nil
}

func (s *Session) wait(ctx context.Context, durationMS uint64) (string, error) {
	s.logger.Info("Waiting", zap.Uint64("duration_ms", durationMS))

	select {
	case <-time.After(time.Duration(durationMS) * time.Millisecond):
		return "Wait completed", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) waitForElement(ctx context.Context, selector string, timeoutMS *uint64) (string, error) {
	s.logger.Info("Waiting for element", zap.String("selector", selector))

	timeout := uint64(defaultWaitTimeout)
	if timeoutMS != nil {
		timeout = *timeoutMS
	}

	deadline := time.Now().Add(time.Duration(timeout) * time.Millisecond)
	for {
		runCtx, cancel := context.WithTimeout(s.pageCtx, actionTimeout)
		found, err := s.elementExists(runCtx, selector)
		cancel()
		if err == nil && found {
			return "Element found", nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("Element not found within %dms", timeout)
		}
		select {
		case <-time.After(elementPollInterval):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (s *Session) scroll(direction schemas.ScrollDirection, pixels *int) (string, error) {
	p := 100
	if pixels != nil {
		p = *pixels
	}
	x, y := direction.Delta(p)

	s.logger.Info("Scrolling", zap.Int("x", x), zap.Int("y", y))

	runCtx, cancel := context.WithTimeout(s.pageCtx, actionTimeout)
	defer cancel()

	script := fmt.Sprintf("window.scrollBy(%d, %d)", x, y)
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, nil)); err != nil {
		return "", fmt.Errorf("Failed to scroll: %w", err)
	}
	return fmt.Sprintf("Scrolled by (%d, %d)", x, y), nil
}

func (s *Session) screenshot() (string, error) {
	s.logger.Info("Taking screenshot")

	runCtx, cancel := context.WithTimeout(s.pageCtx, actionTimeout)
	defer cancel()

	var buf []byte
	capture := chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			Do(ctx)
		return err
	})
	if err := chromedp.Run(runCtx, capture); err != nil {
		return "", fmt.Errorf("Failed to take screenshot: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf), nil
}

func (s *Session) executeScript(script string) (string, error) {
	s.logger.Info("Executing script", zap.String("script", script))

	runCtx, cancel := context.WithTimeout(s.pageCtx, actionTimeout)
	defer cancel()

	var raw []byte
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &raw)); err != nil {
		return "", fmt.Errorf("Failed to execute script: %w", err)
	}
	return renderScriptResult(raw), nil
}

// renderScriptResult turns the evaluated value into the string surfaced to
// callers: the JSON form of the value, so string results keep their quotes
// ("X") and absent values render as null.
func renderScriptResult(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
