// Package main provides the aread command: it sends the page open in the
// user's browser to an aread reading-list service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/entrhq/aread/pkg/config"
	"github.com/entrhq/aread/pkg/orchestrator"
)

const version = "0.1.0"

func main() {
	// Existing variables win over every .env file.
	if err := config.LoadDotEnv(config.DotEnvPaths()...); err != nil {
		pterm.Warning.Printfln("Ignoring .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

func printError(err error) {
	pterm.Error.Println(err.Error())
	if hint := orchestrator.Hint(err); hint != "" {
		pterm.Info.Println(hint)
	}
}
