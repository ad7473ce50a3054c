package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/entrhq/aread/pkg/executor/popup"
	"github.com/entrhq/aread/pkg/orchestrator"
)

var actionMessages = map[orchestrator.Action]struct{ running, done string }{
	orchestrator.ActionSavePage:     {"Saving page", "Page saved"},
	orchestrator.ActionReadLater:    {"Adding page", "Added to your reading list"},
	orchestrator.ActionSendToKindle: {"Sending to Kindle", "Sent to Kindle"},
	orchestrator.ActionReadingList:  {"Opening reading list", "Reading list opened"},
}

// withPipeline opens the app, connects the browser and calls fn.
func withPipeline(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, o *orchestrator.Orchestrator) error) error {
	a, err := openApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.orchestrator(cmd.Context())
	if err != nil {
		return err
	}
	return fn(cmd.Context(), o)
}

// runWithSpinner runs one action behind a pterm spinner.
func runWithSpinner(ctx context.Context, a orchestrator.Action, run func(context.Context) error) error {
	msg := actionMessages[a]
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(false).Start(msg.running + "...")

	if err := run(ctx); err != nil {
		if spinner != nil {
			spinner.Fail(msg.running + " failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Success(msg.done)
	}
	return nil
}

func newAddCmd(flags *globalFlags, use, short string, action orchestrator.Action) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, flags, func(ctx context.Context, o *orchestrator.Orchestrator) error {
				return runWithSpinner(ctx, action, func(ctx context.Context) error {
					return o.Run(ctx, action)
				})
			})
		},
	}
}

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Open your reading list in a new tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, flags, func(ctx context.Context, o *orchestrator.Orchestrator) error {
				return runWithSpinner(ctx, orchestrator.ActionReadingList, o.GoToReadingList)
			})
		},
	}
}

func newSendLinkCmd(flags *globalFlags) *cobra.Command {
	var fromClipboard bool

	cmd := &cobra.Command{
		Use:   "send-link [url]",
		Short: "Send a link to Kindle instead of the current page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := linkArgument(args, fromClipboard, clipboard.ReadAll)
			if err != nil {
				return err
			}
			return withPipeline(cmd, flags, func(ctx context.Context, o *orchestrator.Orchestrator) error {
				return runWithSpinner(ctx, orchestrator.ActionSendToKindle, func(ctx context.Context) error {
					return o.SendLink(ctx, link)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&fromClipboard, "clipboard", false, "Read the link from the clipboard")
	return cmd
}

// linkArgument picks the link from args or the clipboard and checks it is an
// absolute URL.
func linkArgument(args []string, fromClipboard bool, readClipboard func() (string, error)) (string, error) {
	var link string
	switch {
	case len(args) == 1:
		link = args[0]
	case fromClipboard:
		text, err := readClipboard()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		link = text
	default:
		return "", fmt.Errorf("a link argument or --clipboard is required")
	}

	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("not an absolute link: %q", link)
	}
	return link, nil
}

func newPopupCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "popup",
		Short: "Pick an action from a small menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPipeline(cmd, flags, func(ctx context.Context, o *orchestrator.Orchestrator) error {
				_, err := popup.Run(ctx, o)
				return err
			})
		},
	}
}
