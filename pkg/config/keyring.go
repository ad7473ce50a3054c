package config

import (
	"errors"
	"fmt"
	"maps"

	"github.com/zalando/go-keyring"
)

// KeyringService is the keychain service name the token is filed under.
const KeyringService = "aread"

// KeyringStore keeps service.token in the OS keychain and everything else in
// the wrapped store. The token never reaches the wrapped store.
type KeyringStore struct {
	Store
	user string
}

// NewKeyringStore wraps inner. user is the keychain account name, usually the
// config file path so that several profiles do not collide.
func NewKeyringStore(inner Store, user string) *KeyringStore {
	return &KeyringStore{Store: inner, user: user}
}

// GetSection implements Store.
func (k *KeyringStore) GetSection(sectionID string) (map[string]any, error) {
	data, err := k.Store.GetSection(sectionID)
	if err != nil || sectionID != SectionIDService {
		return data, err
	}

	delete(data, KeyToken)
	token, err := keyring.Get(KeyringService, k.user)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to read token from keyring: %w", err)
	default:
		data[KeyToken] = token
	}
	return data, nil
}

// SetSection implements Store. A service section without a token removes the
// keychain entry.
func (k *KeyringStore) SetSection(sectionID string, data map[string]any) error {
	if sectionID != SectionIDService {
		return k.Store.SetSection(sectionID, data)
	}

	data = maps.Clone(data)
	if data == nil {
		data = make(map[string]any)
	}
	token, _ := data[KeyToken].(string)
	delete(data, KeyToken)

	if token == "" {
		if err := keyring.Delete(KeyringService, k.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to remove token from keyring: %w", err)
		}
	} else if err := keyring.Set(KeyringService, k.user, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}

	return k.Store.SetSection(sectionID, data)
}

// GetAll implements Store.
func (k *KeyringStore) GetAll() (map[string]map[string]any, error) {
	all, err := k.Store.GetAll()
	if err != nil {
		return nil, err
	}
	service, err := k.GetSection(SectionIDService)
	if err != nil {
		return nil, err
	}
	if len(service) > 0 {
		all[SectionIDService] = service
	}
	return all, nil
}
