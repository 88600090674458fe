package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service name for OS credential store
const credentialService = "kgit"

// CredentialStore keeps configuration secrets in the OS credential store,
// keyed by configuration key (for example "git.password").
type CredentialStore struct {
	service string
}

// NewCredentialStore creates a credential store bound to the kgit service
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		service: credentialService,
	}
}

// Store saves value under key in the OS credential store.
//
// Parameters:
//   - key: configuration key, e.g. "git.password"
//   - value: secret to store, must not be blank
//
// Returns:
//   - error: validation or storage errors
func (cs *CredentialStore) Store(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value for %s cannot be empty", key)
	}

	if err := keyring.Set(cs.service, key, value); err != nil {
		return fmt.Errorf("failed to store %s in credential store: %w", key, err)
	}

	return nil
}

// Get retrieves the value stored under key.
//
// Returns:
//   - string: the stored value
//   - bool: false when nothing is stored under key
//   - error: credential store failures other than a missing entry
func (cs *CredentialStore) Get(key string) (string, bool, error) {
	value, err := keyring.Get(cs.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to retrieve %s from credential store: %w", key, err)
	}
	return value, true, nil
}

// Delete removes key from the credential store. Missing entries are not an error.
func (cs *CredentialStore) Delete(key string) error {
	err := keyring.Delete(cs.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from credential store: %w", key, err)
	}
	return nil
}

// Has checks whether key is stored without returning it
func (cs *CredentialStore) Has(key string) bool {
	_, ok, err := cs.Get(key)
	return ok && err == nil
}
