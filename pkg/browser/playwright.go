package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/aread/pkg/logging"
	"github.com/entrhq/aread/pkg/orchestrator"
	"github.com/entrhq/aread/pkg/page"
)

// PlaywrightHost drives the user's browser through playwright-go's CDP
// connection. No browser is launched. The driver is installed and the
// connection made on the first ActiveTab or OpenTab.
type PlaywrightHost struct {
	mu      sync.Mutex
	cdpURL  string
	timeout time.Duration
	pw      *playwright.Playwright
	browser playwright.Browser
	logger  logging.Log
}

// NewPlaywright returns a host for the browser at cdpURL. It does no I/O.
func NewPlaywright(cdpURL string, timeout time.Duration, logger logging.Log) *PlaywrightHost {
	return &PlaywrightHost{cdpURL: cdpURL, timeout: timeout, logger: logger}
}

// connect must be called with h.mu held. On failure the host stays
// unconnected and the next call tries again.
func (h *PlaywrightHost) connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.browser != nil {
		return nil
	}

	// Only the driver is installed; we attach to the user's browser.
	opts := &playwright.RunOptions{
		SkipInstallBrowsers: true,
		Verbose:             false,
		Stdout:              io.Discard,
		Stderr:              io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright driver: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	connectOpts := playwright.BrowserTypeConnectOverCDPOptions{}
	if h.timeout > 0 {
		connectOpts.Timeout = playwright.Float(float64(h.timeout.Milliseconds()))
	}
	b, err := pw.Chromium.ConnectOverCDP(h.cdpURL, connectOpts)
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("failed to connect to browser at %s: %w", h.cdpURL, err)
	}

	h.logger.Infof("playwright connected to %s (version %s)", h.cdpURL, b.Version())
	h.pw, h.browser = pw, b
	return nil
}

// ActiveTab implements orchestrator.Host.
func (h *PlaywrightHost) ActiveTab(ctx context.Context) (orchestrator.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.connect(ctx); err != nil {
		return nil, err
	}

	var (
		tabs   []*playwrightTab
		states []focusState
	)
	for ci, bc := range h.browser.Contexts() {
		for pi, p := range bc.Pages() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if p.IsClosed() {
				continue
			}
			var state focusState
			v, err := p.Evaluate(focusFunction)
			if err == nil {
				err = decodeResult(v, &state)
			}
			if err != nil {
				// Crashed or navigating.
				h.logger.Debugf("focus check failed for %s: %v", p.URL(), err)
				continue
			}
			tabs = append(tabs, &playwrightTab{id: fmt.Sprintf("context-%d/page-%d", ci, pi), page: p, context: bc})
			states = append(states, state)
		}
	}

	i, ok := pickActive(states)
	if !ok {
		return nil, ErrNoActiveTab
	}
	h.logger.Debugf("active tab %s: %s", tabs[i].id, tabs[i].page.URL())
	return tabs[i], nil
}

// OpenTab implements orchestrator.Host.
func (h *PlaywrightHost) OpenTab(ctx context.Context, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.connect(ctx); err != nil {
		return err
	}

	bc, err := h.defaultContext()
	if err != nil {
		return err
	}
	p, err := bc.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	if _, err := p.Evaluate(assignFunction, url); err != nil {
		return fmt.Errorf("failed to navigate new tab: %w", err)
	}
	return p.BringToFront()
}

func (h *PlaywrightHost) defaultContext() (playwright.BrowserContext, error) {
	if contexts := h.browser.Contexts(); len(contexts) > 0 {
		return contexts[0], nil
	}
	bc, err := h.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	return bc, nil
}

// Close disconnects and stops the driver. The user's browser keeps running.
func (h *PlaywrightHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	if h.browser != nil {
		if err := h.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		h.browser = nil
	}
	if h.pw != nil {
		if err := h.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
		h.pw = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing playwright: %v", errs)
	}
	return nil
}

type playwrightTab struct {
	id      string
	page    playwright.Page
	context playwright.BrowserContext
}

func (t *playwrightTab) ID() string { return t.id }

func (t *playwrightTab) Snapshot(ctx context.Context) (page.Context, error) {
	if err := ctx.Err(); err != nil {
		return page.Context{}, err
	}
	v, err := t.page.Evaluate(snapshotFunction)
	if err != nil {
		return page.Context{}, fmt.Errorf("failed to read document: %w", err)
	}
	var s snapshot
	if err := decodeResult(v, &s); err != nil {
		return page.Context{}, err
	}
	return s.context()
}

// Navigate assigns location.href from inside the page and returns without
// waiting for the response.
func (t *playwrightTab) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.page.Evaluate(assignFunction, url)
	return err
}

// OpenBackground asks the browser for a background target over a CDP session
// bound to this page. Browsers that refuse get a regular new page, and focus
// is handed back to this one.
func (t *playwrightTab) OpenBackground(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := t.context.NewCDPSession(t.page)
	if err == nil {
		_, err = session.Send("Target.createTarget", map[string]interface{}{
			"url":        url,
			"background": true,
		})
		_ = session.Detach()
		if err == nil {
			return nil
		}
	}

	p, err := t.context.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	if _, err := p.Evaluate(assignFunction, url); err != nil {
		return fmt.Errorf("failed to navigate new tab: %w", err)
	}
	return t.page.BringToFront()
}
