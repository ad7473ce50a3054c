package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDBrowser selects and locates the browser aread drives.
	SectionIDBrowser = "browser"

	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
	DriverSystem     = "system"

	defaultDriver         = DriverPlaywright
	defaultCDPURL         = "http://localhost:9222"
	defaultConnectTimeout = 10 * time.Second
)

// BrowserSection describes how to reach the user's browser.
type BrowserSection struct {
	Driver         string        `json:"driver"`
	CDPURL         string        `json:"cdp_url"`
	ConnectTimeout time.Duration `json:"connect_timeout"`

	// FeedReaders is an optional YAML file of extra feed-reader definitions.
	FeedReaders string `json:"feed_readers"`

	mu sync.RWMutex
}

func NewBrowserSection() *BrowserSection {
	return &BrowserSection{
		Driver:         defaultDriver,
		CDPURL:         defaultCDPURL,
		ConnectTimeout: defaultConnectTimeout,
	}
}

func (s *BrowserSection) ID() string { return SectionIDBrowser }

func (s *BrowserSection) Title() string { return "Browser" }

func (s *BrowserSection) Description() string {
	return "Which driver attaches to your browser and where its DevTools endpoint listens."
}

func (s *BrowserSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"driver":          s.Driver,
		"cdp_url":         s.CDPURL,
		"connect_timeout": s.ConnectTimeout.String(),
		"feed_readers":    s.FeedReaders,
	}
}

func (s *BrowserSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "driver":
			if err := setString(&s.Driver, key, value); err != nil {
				return err
			}
		case "cdp_url":
			if err := setString(&s.CDPURL, key, value); err != nil {
				return err
			}
		case "feed_readers":
			if err := setString(&s.FeedReaders, key, value); err != nil {
				return err
			}

		case "connect_timeout":
			switch v := value.(type) {
			case string:
				d, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("invalid duration string for connect_timeout: %w", err)
				}
				s.ConnectTimeout = d
			case float64:
				// JSON numbers decode as float64
				s.ConnectTimeout = time.Duration(v)
			default:
				return fmt.Errorf("invalid value type for connect_timeout: expected string or number, got %T", value)
			}
		}
	}
	return nil
}

func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.Driver {
	case DriverPlaywright, DriverChromedp, DriverSystem:
	default:
		return fmt.Errorf("unknown browser driver %q", s.Driver)
	}
	if s.Driver != DriverSystem && s.CDPURL == "" {
		return fmt.Errorf("cdp_url is required for the %s driver", s.Driver)
	}
	if s.ConnectTimeout <= 0 {
		return fmt.Errorf("connect_timeout must be positive, got %v", s.ConnectTimeout)
	}
	return nil
}

func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Driver = defaultDriver
	s.CDPURL = defaultCDPURL
	s.ConnectTimeout = defaultConnectTimeout
	s.FeedReaders = ""
}

// BrowserSettings is a point-in-time copy of the browser section.
type BrowserSettings struct {
	Driver         string
	CDPURL         string
	ConnectTimeout time.Duration
	FeedReaders    string
}

func (s *BrowserSection) Settings() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BrowserSettings{
		Driver:         s.Driver,
		CDPURL:         s.CDPURL,
		ConnectTimeout: s.ConnectTimeout,
		FeedReaders:    s.FeedReaders,
	}
}
