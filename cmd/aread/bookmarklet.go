package main

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/atotto/clipboard"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/entrhq/aread/pkg/config"
	"github.com/entrhq/aread/pkg/request"
)

func newBookmarkletCmd(flags *globalFlags) *cobra.Command {
	var (
		opts    request.Options
		copyOut bool
		plain   bool
	)

	cmd := &cobra.Command{
		Use:   "bookmarklet",
		Short: "Print a bookmarklet that adds the current page without aread running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			values, err := a.cfg.Source().Get(cmd.Context(), config.KeyURL, config.KeyToken)
			if err != nil {
				return err
			}
			code, err := bookmarklet(values, opts)
			if err != nil {
				return err
			}

			if err := writeBookmarklet(cmd.OutOrStdout(), code, plain); err != nil {
				return err
			}
			if copyOut {
				if err := clipboard.WriteAll(code); err != nil {
					return fmt.Errorf("failed to copy bookmarklet: %w", err)
				}
				pterm.Success.Println("Bookmarklet copied to the clipboard")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "Save pages to the archive")
	cmd.Flags().BoolVar(&opts.Kindle, "kindle", false, "Send pages to Kindle")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the bookmarklet to the clipboard")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print without syntax highlighting")
	return cmd
}

func bookmarklet(values map[string]string, opts request.Options) (string, error) {
	serviceURL, tok := values[config.KeyURL], values[config.KeyToken]
	if serviceURL == "" || tok == "" {
		return "", fmt.Errorf("the service URL and token must be set first")
	}
	return request.Bookmarklet(serviceURL, tok, opts), nil
}

func writeBookmarklet(w io.Writer, code string, plain bool) error {
	if !plain {
		if err := quick.Highlight(w, code, "javascript", "terminal256", "monokai"); err == nil {
			_, err = fmt.Fprintln(w)
			return err
		}
	}
	_, err := fmt.Fprintln(w, code)
	return err
}
