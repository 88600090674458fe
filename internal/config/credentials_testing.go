package config

import (
	"fmt"
	"testing"

	"github.com/zalando/go-keyring"
)

// TestCredentialStore wraps CredentialStore with a per-test service name so
// tests never touch credentials stored for real use.
//
// Call keyring.MockInit() first when the test must not reach the OS keyring.
type TestCredentialStore struct {
	*CredentialStore
	keys []string
	t    *testing.T
}

// NewTestCredentialStore creates an isolated credential store. Keys written
// through it are removed via t.Cleanup.
func NewTestCredentialStore(t *testing.T) *TestCredentialStore {
	t.Helper()

	ts := &TestCredentialStore{
		CredentialStore: &CredentialStore{
			service: fmt.Sprintf("kgit-test-%s", t.Name()),
		},
		t: t,
	}

	t.Cleanup(ts.Cleanup)

	return ts
}

// Store records key for cleanup and stores it
func (ts *TestCredentialStore) Store(key, value string) error {
	ts.keys = append(ts.keys, key)
	return ts.CredentialStore.Store(key, value)
}

// Cleanup removes every key stored through this helper
func (ts *TestCredentialStore) Cleanup() {
	ts.t.Helper()

	for _, key := range ts.keys {
		_ = keyring.Delete(ts.service, key)
	}
	ts.keys = nil
}
