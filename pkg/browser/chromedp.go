package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/samber/lo"

	"github.com/entrhq/aread/pkg/logging"
	"github.com/entrhq/aread/pkg/orchestrator"
	pagectx "github.com/entrhq/aread/pkg/page"
)

const targetTypePage = "page"

// ChromedpHost talks to a running Chromium over its DevTools endpoint.
//
// Every attach builds a fresh chromedp context directly under the remote
// allocator. Such a context is the first one of its browser connection, and
// cancelling it drops the connection without closing the user's tab.
type ChromedpHost struct {
	mu          sync.Mutex
	cdpURL      string
	timeout     time.Duration
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      logging.Log
}

// NewChromedp prepares a host for cdpURL. Nothing is dialled until a tab is
// requested.
func NewChromedp(cdpURL string, timeout time.Duration, logger logging.Log) *ChromedpHost {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), cdpURL)
	return &ChromedpHost{
		cdpURL:      cdpURL,
		timeout:     timeout,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}
}

// attach connects to targetID, or to any existing page when targetID is
// empty. The returned context stays usable until cancel is called; timeout
// only bounds the connection phase.
func (h *ChromedpHost) attach(ctx context.Context, targetID target.ID) (context.Context, context.CancelFunc, error) {
	var opts []chromedp.ContextOption
	if targetID != "" {
		opts = append(opts, chromedp.WithTargetID(targetID))
	}
	tctx, cancel := chromedp.NewContext(h.allocCtx, opts...)

	stop := context.AfterFunc(ctx, cancel)
	var timer *time.Timer
	if h.timeout > 0 {
		timer = time.AfterFunc(h.timeout, cancel)
	}
	err := chromedp.Run(tctx)
	if timer != nil {
		timer.Stop()
	}
	if err != nil {
		stop()
		cancel()
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("failed to connect to browser at %s: %w", h.cdpURL, err)
	}

	return tctx, func() {
		stop()
		cancel()
	}, nil
}

// pages lists the page targets of the browser.
func (h *ChromedpHost) pages(ctx context.Context) ([]*target.Info, error) {
	tctx, cancel, err := h.attach(ctx, "")
	if err != nil {
		return nil, err
	}
	defer cancel()

	targets, err := chromedp.Targets(tctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	return lo.Filter(targets, func(t *target.Info, _ int) bool {
		return t.Type == targetTypePage
	}), nil
}

// ActiveTab implements orchestrator.Host.
func (h *ChromedpHost) ActiveTab(ctx context.Context) (orchestrator.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pages, err := h.pages(ctx)
	if err != nil {
		return nil, err
	}

	var (
		reachable []*target.Info
		states    []focusState
	)
	for _, info := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tab := &chromedpTab{host: h, id: info.TargetID}
		var state focusState
		if err := tab.evaluate(ctx, focusExpression, &state); err != nil {
			h.logger.Debugf("focus check failed for %s: %v", info.URL, err)
			continue
		}
		reachable = append(reachable, info)
		states = append(states, state)
	}

	i, ok := pickActive(states)
	if !ok {
		return nil, ErrNoActiveTab
	}
	h.logger.Debugf("active tab %s: %s", reachable[i].TargetID, reachable[i].URL)
	return &chromedpTab{host: h, id: reachable[i].TargetID}, nil
}

// OpenTab implements orchestrator.Host.
func (h *ChromedpHost) OpenTab(ctx context.Context, url string) error {
	return h.createTarget(ctx, url, false)
}

func (h *ChromedpHost) createTarget(ctx context.Context, url string, background bool) error {
	tctx, cancel, err := h.attach(ctx, "")
	if err != nil {
		return err
	}
	defer cancel()

	return chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		executor := cdp.WithExecutor(ctx, chromedp.FromContext(ctx).Browser)
		id, err := target.CreateTarget(url).WithBackground(background).Do(executor)
		if err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
		if background {
			return nil
		}
		return target.ActivateTarget(id).Do(executor)
	}))
}

// Close releases the allocator. The browser keeps running.
func (h *ChromedpHost) Close() error {
	h.allocCancel()
	return nil
}

type chromedpTab struct {
	host *ChromedpHost
	id   target.ID
}

func (t *chromedpTab) ID() string { return string(t.id) }

func (t *chromedpTab) evaluate(ctx context.Context, expression string, out any) error {
	tctx, cancel, err := t.host.attach(ctx, t.id)
	if err != nil {
		return err
	}
	defer cancel()
	return chromedp.Run(tctx, chromedp.Evaluate(expression, out))
}

func (t *chromedpTab) Snapshot(ctx context.Context) (pagectx.Context, error) {
	var s snapshot
	if err := t.evaluate(ctx, snapshotExpression, &s); err != nil {
		return pagectx.Context{}, fmt.Errorf("failed to read document: %w", err)
	}
	return s.context()
}

// Navigate issues Page.navigate and returns as soon as the browser accepts
// it. Load progress is not observed.
func (t *chromedpTab) Navigate(ctx context.Context, url string) error {
	tctx, cancel, err := t.host.attach(ctx, t.id)
	if err != nil {
		return err
	}
	defer cancel()

	return chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errText, _, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errText != "" {
			return fmt.Errorf("navigation rejected: %s", errText)
		}
		return nil
	}))
}

func (t *chromedpTab) OpenBackground(ctx context.Context, url string) error {
	return t.host.createTarget(ctx, url, true)
}
