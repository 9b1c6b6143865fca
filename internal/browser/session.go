// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one isolated browser tab. All operations on a session are
// serialized: the page is stateful and concurrent CDP commands against it
// interleave badly.
type Session struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	pageCtx    context.Context
	pageCancel context.CancelFunc

	driver *Driver
	logger *zap.Logger
	closed bool
}

// NewSession opens a fresh tab in the shared browser. Page creation is
// retried once: right after launch the browser can reject the first
// CreateTarget while it finishes initializing.
func (d *Driver) NewSession(ctx context.Context) (*Session, error) {
	d.logger.Info("Creating new browser session")

	pageCtx, pageCancel, err := d.newPage(ctx)
	if err != nil {
		retryDelay := d.cfg.PageRetryDelay
		if retryDelay <= 0 {
			retryDelay = time.Second
		}
		d.logger.Warn("First attempt to create page failed, retrying...", zap.Error(err))

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		pageCtx, pageCancel, err = d.newPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new page after retry: %w", err)
		}
	}

	s := &Session{
		id:         uuid.New().String(),
		createdAt:  time.Now().UTC(),
		pageCtx:    pageCtx,
		pageCancel: pageCancel,
		driver:     d,
		logger:     d.logger.Named("session"),
	}
	d.wg.Add(1)

	d.logger.Info("Browser session created successfully", zap.String("session_id", s.id))
	return s, nil
}

// newPage materializes one tab and parks it on about:blank.
func (d *Driver) newPage(ctx context.Context) (context.Context, context.CancelFunc, error) {
	pageCtx, pageCancel := chromedp.NewContext(d.allocatorCtx)

	runCtx, cancelRun := context.WithTimeout(pageCtx, 15*time.Second)
	defer cancelRun()
	if err := chromedp.Run(runCtx, chromedp.Navigate("about:blank")); err != nil {
		pageCancel()
		return nil, nil, fmt.Errorf("failed to create new page: %w", err)
	}

	select {
	case <-ctx.Done():
		pageCancel()
		return nil, nil, ctx.Err()
	default:
	}
	return pageCtx, pageCancel, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Navigate loads the given URL. It does not wait for navigation lifecycle
// events; it issues the load and then gives the page a fixed settle period,
// all inside the navigation deadline.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Navigating", zap.String("session_id", s.id), zap.String("url", url))

	timeout := s.driver.netCfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	navCtx, cancel := context.WithTimeout(s.pageCtx, timeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("Navigation timeout after %v", timeout)
		}
		return fmt.Errorf("Failed to navigate to %s: %w", url, err)
	}

	// Let the page start loading before the caller acts on it.
	settle := s.driver.netCfg.PostLoadWait
	select {
	case <-time.After(settle):
	case <-navCtx.Done():
		return fmt.Errorf("Navigation timeout after %v", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// CurrentURL reports the page's location, falling back to about:blank when
// the page has none.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(s.pageCtx, 10*time.Second)
	defer cancel()

	var url string
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("Failed to get current URL: %w", err)
	}
	if url == "" {
		url = "about:blank"
	}
	return url, nil
}

// PageSource returns the serialized DOM of the current page.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageSourceLocked()
}

func (s *Session) pageSourceLocked() (string, error) {
	runCtx, cancel := context.WithTimeout(s.pageCtx, 30*time.Second)
	defer cancel()

	var source string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &source, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("Failed to get page source: %w", err)
	}
	return source, nil
}

// ExtractData runs a DOM query in the page and returns the matched
// elements with their text, markup, and attributes.
func (s *Session) ExtractData(ctx context.Context, selector string) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Extracting data", zap.String("session_id", s.id), zap.String("selector", selector))

	script := fmt.Sprintf(`
        Array.from(document.querySelectorAll(%s)).map(el => {
            return {
                text: el.textContent || el.innerText || '',
                html: el.innerHTML,
                attributes: Object.fromEntries(
                    Array.from(el.attributes).map(attr => [attr.name, attr.value])
                ),
                tagName: el.tagName.toLowerCase(),
                className: el.className,
                id: el.id
            };
        })
    `, jsString(selector))

	runCtx, cancel := context.WithTimeout(s.pageCtx, 30*time.Second)
	defer cancel()

	var elements []interface{}
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &elements)); err != nil {
		return nil, fmt.Errorf("Failed to extract data: %w", err)
	}

	return map[string]interface{}{
		"elements": elements,
		"count":    len(elements),
	}, nil
}

// Close releases the tab. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.logger.Info("Closing browser session", zap.String("session_id", s.id))
	s.pageCancel()
	s.closed = true
	s.driver.wg.Done()
	return nil
}

// jsString encodes s as a JavaScript string literal.
func jsString(s string) string {
	encoded, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(encoded)
}
