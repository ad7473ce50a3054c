package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/entrhq/aread/pkg/token"
)

// OpenOptions select the backing store.
type OpenOptions struct {
	// Path of the JSON file; empty means ~/.aread/config.json.
	Path string

	// Keyring keeps the token in the OS keychain.
	Keyring bool
}

// Config is the loaded configuration with both sections registered.
type Config struct {
	Manager *Manager
	Service *ServiceSection
	Browser *BrowserSection

	store Store
}

// Open loads the configuration.
func Open(opts OpenOptions) (*Config, error) {
	fileStore, err := NewFileStore(opts.Path)
	if err != nil {
		return nil, err
	}

	var store Store = fileStore
	if opts.Keyring {
		store = NewKeyringStore(fileStore, fileStore.Path())
	}
	return openStore(store)
}

func openStore(store Store) (*Config, error) {
	c := &Config{
		Manager: NewManager(store),
		Service: NewServiceSection(),
		Browser: NewBrowserSection(),
		store:   store,
	}
	for _, s := range []Section{c.Service, c.Browser} {
		if err := c.Manager.RegisterSection(s); err != nil {
			return nil, err
		}
	}
	if err := c.Manager.LoadAll(); err != nil {
		return nil, err
	}
	return c, nil
}

// BrowserSettings returns the browser section with AREAD_DRIVER and
// AREAD_CDP_URL applied.
func (c *Config) BrowserSettings() BrowserSettings {
	s := c.Browser.Settings()
	if v := os.Getenv(EnvDriver); v != "" {
		s.Driver = v
	}
	if v := os.Getenv(EnvCDPURL); v != "" {
		s.CDPURL = v
	}
	return s
}

// Source returns a reader of the service keys that re-reads the store on
// every call.
func (c *Config) Source() *Source {
	return &Source{store: c.store}
}

// Source serves service keys to the orchestrator.
type Source struct {
	store Store
}

// NewSource reads from store.
func NewSource(store Store) *Source {
	return &Source{store: store}
}

// Get returns the requested service keys that have a non-empty string value.
func (s *Source) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.Load(); err != nil {
		return nil, fmt.Errorf("failed to reload config: %w", err)
	}
	data, err := s.store.GetSection(SectionIDService)
	if err != nil {
		return nil, fmt.Errorf("failed to read service settings: %w", err)
	}
	data = overrideService(data)

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := data[k].(string); ok && v != "" {
			out[k] = v
		}
	}
	return out, nil
}

// Credentials is what the options surface collects.
type Credentials struct {
	URL      string
	Username string
	Password string
}

// NormalizeServiceURL trims whitespace and one trailing slash, so request
// paths can be appended directly.
func NormalizeServiceURL(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), "/")
}

// SaveOptions stores the service URL and, when both credentials are given,
// the token derived from them. Only the token is kept. Blank credentials
// leave the stored token as it was.
func (c *Config) SaveOptions(in Credentials) error {
	c.Service.SetURL(NormalizeServiceURL(in.URL))

	if tok, ok := token.FromCredential(token.Credential{Username: in.Username, Password: in.Password}); ok {
		c.Service.SetToken(tok)
	}
	return c.Manager.SaveAll()
}

// Reset restores every section's defaults and saves, dropping the stored URL
// and token.
func (c *Config) Reset() error {
	c.Manager.ResetAll()
	return c.Manager.SaveAll()
}
