// Package orchestrator runs one user action end to end: read configuration,
// find the focused tab, resolve and dispatch from inside that tab.
//
// Every step is awaited before the next one starts. Nothing is retried and no
// step has a timeout of its own; callers bound the whole invocation with the
// context they pass in.
package orchestrator

import (
	"context"
	"errors"

	"github.com/entrhq/aread/pkg/dispatch"
	"github.com/entrhq/aread/pkg/logging"
	"github.com/entrhq/aread/pkg/page"
	"github.com/entrhq/aread/pkg/request"
	"github.com/entrhq/aread/pkg/resolve"
	"github.com/google/uuid"
)

// Keys read from the configuration source.
const (
	KeyURL   = "url"
	KeyToken = "token"
)

// Configuration is read fresh on every invocation.
type Configuration struct {
	ServiceURL string
	Token      string
}

// ConfigSource returns the stored values for keys. Absent keys are simply
// missing from the result.
type ConfigSource interface {
	Get(ctx context.Context, keys ...string) (map[string]string, error)
}

// Tab is one browser tab the pipeline can run in.
type Tab interface {
	dispatch.Tab

	// ID identifies the tab to the host, for logs and error metadata.
	ID() string

	// Snapshot returns the tab's current document.
	Snapshot(ctx context.Context) (page.Context, error)
}

// Host locates tabs and opens new ones.
type Host interface {
	// ActiveTab returns the focused tab of the user's browser.
	ActiveTab(ctx context.Context) (Tab, error)

	// OpenTab opens url in a new foreground tab.
	OpenTab(ctx context.Context, url string) error
}

// Orchestrator wires the pipeline to a host and a configuration source.
type Orchestrator struct {
	config   ConfigSource
	host     Host
	resolver *resolve.Resolver
	logger   logging.Log
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithResolver replaces the built-in feed-reader resolver.
func WithResolver(r *resolve.Resolver) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(l logging.Log) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns an Orchestrator reading configuration from config and acting on
// host.
func New(config ConfigSource, host Host, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config:   config,
		host:     host,
		resolver: resolve.Default(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AddPage submits the focused tab's page, or opts.OverrideURL when set.
// It returns once the request has been issued.
func (o *Orchestrator) AddPage(ctx context.Context, opts request.Options) error {
	id := uuid.NewString()
	o.logger.Infof("[%s] add page: archive=%t kindle=%t override=%t", id, opts.Archive, opts.Kindle, opts.OverrideURL != "")

	cfg, err := o.fetchConfig(ctx, KeyURL, KeyToken)
	if err != nil {
		o.logger.Warnf("[%s] %v", id, err)
		return err
	}

	tab, err := o.host.ActiveTab(ctx)
	if err != nil {
		o.logger.Errorf("[%s] active tab lookup failed: %v", id, err)
		return tabLookupFailure(err)
	}
	o.logger.Debugf("[%s] running in tab %s", id, tab.ID())

	r := runner{cfg: cfg, opts: opts, resolver: o.resolver}
	if err := r.run(ctx, tab); err != nil {
		o.logger.Errorf("[%s] %v", id, err)
		return err
	}

	o.logger.Infof("[%s] request issued", id)
	return nil
}

// GoToReadingList opens the service's reading list in a new tab.
func (o *Orchestrator) GoToReadingList(ctx context.Context) error {
	id := uuid.NewString()
	o.logger.Infof("[%s] go to reading list", id)

	cfg, err := o.fetchConfig(ctx, KeyURL)
	if err != nil {
		o.logger.Warnf("[%s] %v", id, err)
		return err
	}

	if err := o.host.OpenTab(ctx, request.ReadingListURL(cfg.ServiceURL)); err != nil {
		o.logger.Errorf("[%s] open reading list failed: %v", id, err)
		return injectionFailure(err, "", "open")
	}
	return nil
}

// fetchConfig reads the required keys. Empty values count as missing.
func (o *Orchestrator) fetchConfig(ctx context.Context, required ...string) (Configuration, error) {
	values, err := o.config.Get(ctx, KeyURL, KeyToken)
	if err != nil {
		return Configuration{}, configurationUnreadable(err)
	}

	var missing []string
	for _, key := range required {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Configuration{}, configurationMissing(missing)
	}

	return Configuration{ServiceURL: values[KeyURL], Token: values[KeyToken]}, nil
}

// runner is the tab-bound half of AddPage. It holds its own copies of the
// configuration and options.
type runner struct {
	cfg      Configuration
	opts     request.Options
	resolver *resolve.Resolver
}

func (r runner) run(ctx context.Context, tab Tab) error {
	var doc page.Context
	if r.opts.OverrideURL == "" {
		snap, err := tab.Snapshot(ctx)
		if err != nil {
			return injectionFailure(err, tab.ID(), "snapshot")
		}
		doc = snap
	}

	target, err := r.resolver.Resolve(doc, r.opts.OverrideURL)
	if err != nil {
		if errors.Is(err, resolve.ErrPageLinkNotFound) {
			return pageLinkNotFound(err, doc.Hostname)
		}
		return injectionFailure(err, tab.ID(), "resolve")
	}

	reqURL := request.Build(r.cfg.ServiceURL, r.cfg.Token, target.URL, r.opts)
	if err := dispatch.Dispatch(ctx, tab, target, reqURL); err != nil {
		return injectionFailure(err, tab.ID(), "dispatch")
	}
	return nil
}
