package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/entrhq/aread/pkg/executor/background"
	"github.com/entrhq/aread/pkg/logging"
	"github.com/entrhq/aread/pkg/orchestrator"
)

func newListenCmd(flags *globalFlags) *cobra.Command {
	var fifo string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run commands read one per line from stdin or a FIFO",
		Long: `listen keeps the browser connection open and runs every command it reads.
Commands: save-page, read-later, send-to-kindle, reading-list.

Bind a hotkey to: echo save-page > /path/to/fifo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := commandInput(cmd.InOrStdin(), fifo)
			if err != nil {
				return err
			}
			defer closeIn()

			return withPipeline(cmd, flags, func(ctx context.Context, o *orchestrator.Orchestrator) error {
				l := background.New(o, logging.MustLogger("listener"))
				l.OnResult = func(a orchestrator.Action, err error) {
					if err != nil {
						pterm.Error.Printfln("%s: %v", a, err)
						return
					}
					pterm.Success.Printfln("%s: %s", a, actionMessages[a].done)
				}
				pterm.Info.Println("Listening for commands")
				return l.Listen(ctx, in)
			})
		},
	}
	cmd.Flags().StringVar(&fifo, "fifo", "", "Read commands from this named pipe instead of stdin")
	return cmd
}

// commandInput returns stdin, or fifo opened read-write so the stream
// survives writers coming and going.
func commandInput(stdin io.Reader, fifo string) (io.Reader, func(), error) {
	if fifo == "" {
		return stdin, func() {}, nil
	}
	f, err := os.OpenFile(fifo, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", fifo, err)
	}
	return f, func() { f.Close() }, nil
}
