package main

import (
	"github.com/spf13/cobra"

	"github.com/entrhq/aread/pkg/orchestrator"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	keyring    bool
	driver     string
	cdpURL     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "aread",
		Short:         "Send the page in your browser to aread",
		Long:          "aread submits the focused browser tab to an aread reading-list service.\nThe browser must expose its DevTools endpoint unless the system driver is used.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default ~/.aread/config.json)")
	pf.BoolVar(&flags.keyring, "keyring", false, "Keep the token in the OS keychain (or AREAD_KEYRING=1)")
	pf.StringVar(&flags.driver, "driver", "", "Browser driver: playwright, chromedp or system")
	pf.StringVar(&flags.cdpURL, "cdp-url", "", "DevTools endpoint of the browser")

	root.AddCommand(
		newAddCmd(flags, "save", "Save the current page to the archive", orchestrator.ActionSavePage),
		newAddCmd(flags, "later", "Add the current page to the reading list", orchestrator.ActionReadLater),
		newAddCmd(flags, "kindle", "Send the current page to Kindle", orchestrator.ActionSendToKindle),
		newSendLinkCmd(flags),
		newListCmd(flags),
		newPopupCmd(flags),
		newListenCmd(flags),
		newOptionsCmd(flags),
		newConfigCmd(flags),
		newBookmarkletCmd(flags),
	)
	return root
}
