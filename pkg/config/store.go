package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

const storeVersion = "1.0"

// Store persists configuration sections. Section data is exchanged as plain
// maps so a store never needs to know the section types.
type Store interface {
	// Load re-reads the backing storage, discarding unsaved changes.
	Load() error

	// Save writes every section back.
	Save() error

	// GetSection returns a copy of one section. A section never written is
	// an empty map, not an error.
	GetSection(sectionID string) (map[string]any, error)

	// SetSection replaces one section.
	SetSection(sectionID string, data map[string]any) error

	// GetAll returns a copy of every section.
	GetAll() (map[string]map[string]any, error)
}

// FileStore keeps sections in one JSON document:
//
//	{"version": "1.0", "sections": {"service": {...}, "browser": {...}}}
type FileStore struct {
	path    string
	data    map[string]map[string]any
	mu      sync.RWMutex
	version string
}

type fileDocument struct {
	Version  string                    `json:"version"`
	Sections map[string]map[string]any `json:"sections"`
}

// DefaultDir returns ~/.aread.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".aread"), nil
}

// NewFileStore opens the store at path, or ~/.aread/config.json when path is
// empty. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.json")
	}

	store := &FileStore{
		path:    path,
		data:    make(map[string]map[string]any),
		version: storeVersion,
	}
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return store, nil
}

// Load implements Store.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.data = make(map[string]map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	if doc.Version != "" {
		s.version = doc.Version
	}
	s.data = doc.Sections
	if s.data == nil {
		s.data = make(map[string]map[string]any)
	}
	return nil
}

// Save implements Store. The document is written to a temporary file and
// renamed over the old one.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := json.MarshalIndent(fileDocument{Version: s.version, Sections: s.data}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, append(raw, '\n'), 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// GetSection implements Store.
func (s *FileStore) GetSection(sectionID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if data, ok := s.data[sectionID]; ok {
		return maps.Clone(data), nil
	}
	return make(map[string]any), nil
}

// SetSection implements Store.
func (s *FileStore) SetSection(sectionID string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[sectionID] = maps.Clone(data)
	return nil
}

// GetAll implements Store.
func (s *FileStore) GetAll() (map[string]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string]map[string]any, len(s.data))
	for id, data := range s.data {
		all[id] = maps.Clone(data)
	}
	return all, nil
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}
