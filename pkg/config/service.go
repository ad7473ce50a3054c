package config

import (
	"fmt"
	"net/url"
	"sync"
)

const (
	// SectionIDService holds the aread service location and access token.
	SectionIDService = "service"

	KeyURL   = "url"
	KeyToken = "token"
)

// ServiceSection is where the service URL and derived token live. Both start
// empty; a missing value is never filled with a default.
type ServiceSection struct {
	URL   string `json:"url"`
	Token string `json:"token"`
	mu    sync.RWMutex
}

func NewServiceSection() *ServiceSection {
	return &ServiceSection{}
}

func (s *ServiceSection) ID() string { return SectionIDService }

func (s *ServiceSection) Title() string { return "Service" }

func (s *ServiceSection) Description() string {
	return "Location of the aread service and the token derived from your credentials."
}

// Data returns the stored keys. Empty values are omitted so that an unset
// token stays absent in the file.
func (s *ServiceSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := make(map[string]any, 2)
	if s.URL != "" {
		data[KeyURL] = s.URL
	}
	if s.Token != "" {
		data[KeyToken] = s.Token
	}
	return data
}

func (s *ServiceSection) SetData(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case KeyURL:
			if err := setString(&s.URL, key, value); err != nil {
				return err
			}
		case KeyToken:
			if err := setString(&s.Token, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate accepts an empty URL; otherwise it must be absolute.
func (s *ServiceSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.URL == "" {
		return nil
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service url must be an absolute URL, got %q", s.URL)
	}
	return nil
}

func (s *ServiceSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.URL = ""
	s.Token = ""
}

// Get returns the URL and token.
func (s *ServiceSection) Get() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.URL, s.Token
}

func (s *ServiceSection) SetURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.URL = u
}

func (s *ServiceSection) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Token = token
}

func setString(dst *string, key string, value any) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
	}
	*dst = v
	return nil
}
