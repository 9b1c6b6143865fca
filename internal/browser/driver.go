// internal/browser/driver.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/internal/config"
)

// Driver owns the headless browser process. All session pages are tabs
// derived from its allocator context, so one Chrome instance serves every
// concurrent session.
type Driver struct {
	logger *zap.Logger
	cfg    config.BrowserConfig
	netCfg config.NetworkConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	// wg tracks open sessions for a graceful shutdown.
	wg sync.WaitGroup
}

// NewDriver launches the browser process and verifies it responds before
// returning. ctx bounds the startup probe only; the allocator itself is
// parented on the background context so that a caller's startup deadline
// cannot tear down the browser later. The browser lives until Shutdown.
func NewDriver(ctx context.Context, logger *zap.Logger, cfg config.BrowserConfig, netCfg config.NetworkConfig) (*Driver, error) {
	d := &Driver{
		logger: logger.Named("browser_driver"),
		cfg:    cfg,
		netCfg: netCfg,
	}

	d.logger.Info("Initializing browser allocator...")

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), d.buildAllocatorOptions()...)
	d.allocatorCtx = allocCtx
	d.allocatorCancel = cancel

	// Confirm the browser starts and responds within the startup deadline.
	startupTimeout := cfg.StartupTimeout
	if startupTimeout <= 0 {
		startupTimeout = 30 * time.Second
	}
	testCtx, cancelTest := context.WithTimeout(allocCtx, startupTimeout)
	testCtx, cancelTestCtx := chromedp.NewContext(testCtx)
	defer cancelTestCtx()
	defer cancelTest()
	stopWatch := context.AfterFunc(ctx, cancelTest)
	defer stopWatch()

	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		d.allocatorCancel()
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	d.logger.Info("Browser launched successfully and is responsive.")
	return d, nil
}

// buildAllocatorOptions assembles the flags for a headless, container-safe
// browser instance.
func (d *Driver) buildAllocatorOptions() []chromedp.ExecAllocatorOption {
	// Start from the defaults and override the flag that reveals automation.
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("headless", d.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", d.cfg.Headless),
		chromedp.WindowSize(d.cfg.WindowWidth, d.cfg.WindowHeight),
	)

	if d.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(d.cfg.UserAgent))
	}
	if d.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.cfg.ExecPath))
	}

	// Flags required for running inside containers (e.g. Docker on Linux).
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	return opts
}

// Shutdown waits for open sessions to close, then terminates the browser
// process. The caller's deadline bounds the wait.
func (d *Driver) Shutdown(ctx context.Context) error {
	d.logger.Info("Browser driver shutdown initiated. Waiting for active sessions to complete...")

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("All sessions have completed.")
	case <-ctx.Done():
		d.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	if d.allocatorCancel != nil {
		d.logger.Info("Shutting down main browser process...")
		d.allocatorCancel()
		<-d.allocatorCtx.Done()
	}
	return nil
}
