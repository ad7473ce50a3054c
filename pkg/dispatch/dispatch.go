// Package dispatch issues the add request from inside the user's tab.
package dispatch

import (
	"context"
	"fmt"

	"github.com/entrhq/aread/pkg/resolve"
)

// Tab is the host capability the dispatcher needs from the tab it runs in.
//
// Navigate replaces the tab's current document. OpenBackground opens a new
// tab that does not take focus, so the current page stays in view. Both
// return once the host has issued the action; neither waits for or reports
// the outcome of the request itself.
type Tab interface {
	Navigate(ctx context.Context, url string) error
	OpenBackground(ctx context.Context, url string) error
}

// Dispatch sends requestURL according to target.OpenInNewTab. An error means
// the host could not issue the action at all.
func Dispatch(ctx context.Context, tab Tab, target resolve.Target, requestURL string) error {
	if target.OpenInNewTab {
		if err := tab.OpenBackground(ctx, requestURL); err != nil {
			return fmt.Errorf("failed to open background tab: %w", err)
		}
		return nil
	}

	if err := tab.Navigate(ctx, requestURL); err != nil {
		return fmt.Errorf("failed to navigate tab: %w", err)
	}
	return nil
}
