package main

import (
	"context"
	"fmt"

	"github.com/entrhq/aread/pkg/browser"
	"github.com/entrhq/aread/pkg/config"
	"github.com/entrhq/aread/pkg/logging"
	"github.com/entrhq/aread/pkg/orchestrator"
	"github.com/entrhq/aread/pkg/resolve"
)

// app holds what a command needs: configuration, a logger and, once
// connected, the browser host.
type app struct {
	flags  *globalFlags
	cfg    *config.Config
	logger *logging.Logger
	host   browser.Host
}

func openApp(flags *globalFlags) (*app, error) {
	cfg, err := config.Open(config.OpenOptions{
		Path:    flags.configPath,
		Keyring: flags.keyring || config.KeyringFromEnv(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.MustLogger("cli")
	logger.Debugf("aread %s, config %s", version, flags.configPath)
	return &app{flags: flags, cfg: cfg, logger: logger}, nil
}

// settings applies the command-line overrides on top of environment and file.
func (a *app) settings() config.BrowserSettings {
	s := a.cfg.BrowserSettings()
	if a.flags.driver != "" {
		s.Driver = a.flags.driver
	}
	if a.flags.cdpURL != "" {
		s.CDPURL = a.flags.cdpURL
	}
	return s
}

// orchestrator returns a ready pipeline. The host connects on first use.
func (a *app) orchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	s := a.settings()

	resolver, err := resolve.NewWithFile(s.FeedReaders)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed readers: %w", err)
	}

	host, err := browser.New(ctx, s, logging.MustLogger("browser"))
	if err != nil {
		return nil, err
	}
	a.host = host
	a.logger.Infof("using %s driver", s.Driver)

	return orchestrator.New(a.cfg.Source(), host,
		orchestrator.WithResolver(resolver),
		orchestrator.WithLogger(logging.MustLogger("orchestrator")),
	), nil
}

func (a *app) Close() {
	if a.host != nil {
		if err := a.host.Close(); err != nil {
			a.logger.Warnf("failed to close browser connection: %v", err)
		}
	}
	a.logger.Close()
}
