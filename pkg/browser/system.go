package browser

import (
	"context"
	"io"

	sysbrowser "github.com/pkg/browser"

	"github.com/entrhq/aread/pkg/logging"
	"github.com/entrhq/aread/pkg/orchestrator"
	"github.com/entrhq/aread/pkg/page"
)

func init() {
	// xdg-open and friends chatter on stdout; keep the terminal clean.
	sysbrowser.Stdout = io.Discard
	sysbrowser.Stderr = io.Discard
}

// SystemHost opens URLs in the desktop's default browser. It has no view of
// open pages, so its tab cannot be snapshotted and every navigation lands in
// a new window or tab chosen by the browser.
type SystemHost struct {
	open   func(url string) error
	logger logging.Log
}

// NewSystem returns a host backed by the platform URL opener.
func NewSystem(logger logging.Log) *SystemHost {
	return &SystemHost{open: sysbrowser.OpenURL, logger: logger}
}

// ActiveTab implements orchestrator.Host.
func (h *SystemHost) ActiveTab(ctx context.Context) (orchestrator.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &systemTab{host: h}, nil
}

// OpenTab implements orchestrator.Host.
func (h *SystemHost) OpenTab(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.logger.Debugf("opening %s with the system browser", url)
	return h.open(url)
}

func (h *SystemHost) Close() error { return nil }

type systemTab struct {
	host *SystemHost
}

func (t *systemTab) ID() string { return "system" }

func (t *systemTab) Snapshot(context.Context) (page.Context, error) {
	return page.Context{}, ErrSnapshotUnsupported
}

func (t *systemTab) Navigate(ctx context.Context, url string) error {
	return t.host.OpenTab(ctx, url)
}

func (t *systemTab) OpenBackground(ctx context.Context, url string) error {
	return t.host.OpenTab(ctx, url)
}
