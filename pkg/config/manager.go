package config

import (
	"fmt"
	"sync"
)

// Section is one typed group of settings persisted under its ID.
type Section interface {
	ID() string
	Title() string
	Description() string

	// Data returns the section as a plain map for the store.
	Data() map[string]any

	// SetData applies stored values. Unknown keys are ignored.
	SetData(data map[string]any) error

	Validate() error

	// Reset restores defaults.
	Reset()
}

// Manager moves registered sections in and out of a Store.
type Manager struct {
	store    Store
	sections map[string]Section
	order    []string
	mu       sync.RWMutex
}

// NewManager returns a manager with no sections.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds s. IDs must be unique.
func (m *Manager) RegisterSection(s Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sections[s.ID()]; exists {
		return fmt.Errorf("section %q already registered", s.ID())
	}
	m.sections[s.ID()] = s
	m.order = append(m.order, s.ID())
	return nil
}

// GetSections returns the sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.sections[id])
	}
	return out
}

// LoadAll re-reads the store and applies it to every section. Sections absent
// from the store keep their defaults.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, s := range m.GetSections() {
		data, err := m.store.GetSection(s.ID())
		if err != nil {
			return fmt.Errorf("failed to read section %s: %w", s.ID(), err)
		}
		if len(data) == 0 {
			continue
		}
		if err := s.SetData(data); err != nil {
			return fmt.Errorf("failed to apply section %s: %w", s.ID(), err)
		}
	}
	return nil
}

// SaveAll validates every section and writes them to the store.
func (m *Manager) SaveAll() error {
	sections := m.GetSections()
	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid %s settings: %w", s.ID(), err)
		}
	}

	for _, s := range sections {
		if err := m.store.SetSection(s.ID(), s.Data()); err != nil {
			return fmt.Errorf("failed to store section %s: %w", s.ID(), err)
		}
	}
	if err := m.store.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ResetAll restores every section's defaults without saving.
func (m *Manager) ResetAll() {
	for _, s := range m.GetSections() {
		s.Reset()
	}
}
