// Package browser attaches aread to the user's running browser.
//
// A Host finds the tab that currently has focus and hands out a Tab bound to
// it; the pipeline then snapshots the document and dispatches from that Tab.
// Three drivers exist:
//
//   - playwright: connects over the DevTools protocol with playwright-go
//   - chromedp:   connects over the DevTools protocol with chromedp
//   - system:     opens URLs with the desktop's default browser; it cannot
//     observe pages, so only link submission and the reading list work
//
// The CDP drivers expect a Chromium started with --remote-debugging-port.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/aread/pkg/config"
	"github.com/entrhq/aread/pkg/logging"
	"github.com/entrhq/aread/pkg/orchestrator"
	"github.com/entrhq/aread/pkg/page"
)

var (
	// ErrNoActiveTab means no page of the browser is focused or visible.
	ErrNoActiveTab = errors.New("no focused browser tab")

	// ErrSnapshotUnsupported is returned by drivers that cannot read pages.
	ErrSnapshotUnsupported = errors.New("this browser driver cannot read the current page")
)

// Host is an orchestrator.Host that holds a browser connection.
type Host interface {
	orchestrator.Host
	Close() error
}

// New returns a host for the driver named in settings. Hosts connect on first
// use, so a browser that is not listening surfaces from ActiveTab or OpenTab.
func New(ctx context.Context, settings config.BrowserSettings, logger logging.Log) (Host, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}
	switch settings.Driver {
	case config.DriverPlaywright, "":
		return NewPlaywright(settings.CDPURL, settings.ConnectTimeout, logger), nil
	case config.DriverChromedp:
		return NewChromedp(settings.CDPURL, settings.ConnectTimeout, logger), nil
	case config.DriverSystem:
		return NewSystem(logger), nil
	}
	return nil, fmt.Errorf("unknown browser driver %q", settings.Driver)
}

// Page-side expressions. They take no input; values going the other way are
// passed as structured arguments, never spliced into script text.
const (
	snapshotExpression = `({url: document.URL, html: document.documentElement ? document.documentElement.outerHTML : ""})`
	focusExpression    = `({focused: document.hasFocus(), visible: document.visibilityState === "visible"})`

	snapshotFunction = `() => ` + snapshotExpression
	focusFunction    = `() => ` + focusExpression
	assignFunction   = `url => { window.location.href = url; }`
)

type snapshot struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

func (s snapshot) context() (page.Context, error) {
	return page.ParseHTML(strings.NewReader(s.HTML), s.URL)
}

type focusState struct {
	Focused bool `json:"focused"`
	Visible bool `json:"visible"`
}

// pickActive prefers the first focused page, then the first visible one.
// Every page reports hasFocus() false while the browser window is in the
// background.
func pickActive(states []focusState) (int, bool) {
	for i, s := range states {
		if s.Focused {
			return i, true
		}
	}
	for i, s := range states {
		if s.Visible {
			return i, true
		}
	}
	return -1, false
}

// decodeResult converts a loosely typed evaluation result into out.
func decodeResult(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode evaluation result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unexpected evaluation result %s: %w", raw, err)
	}
	return nil
}
