package config

import (
	"fmt"
	"os"
	"strings"

	"kgit/internal/logging"
)

// Credentials are the username/password pair used for every remote operation
// of a repository handle.
type Credentials struct {
	Username string
	Password string
}

// IsZero reports whether no credential was configured
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}

// Identity is the committer recorded on commits
type Identity struct {
	Name  string
	Email string
}

// IsZero reports whether no identity was configured
func (i Identity) IsZero() bool {
	return i.Name == "" && i.Email == ""
}

// Provider resolves named configuration values. Lookup order is the loaded
// file, the environment variable named exactly like the key, the upper-snake
// environment variable (git.username -> GIT_USERNAME), then the credential store.
type Provider struct {
	values    map[string]string
	source    string
	lookupEnv func(string) (string, bool)
	store     *CredentialStore
}

// ProviderOptions configures NewProvider
type ProviderOptions struct {
	// Path of the config file. Empty means FindConfigFile.
	Path string
	// Store is consulted last. Nil disables the credential store lookup.
	Store *CredentialStore
}

// NewProvider loads the config file (if any) and returns a provider over it.
// An explicit Path that does not exist is an error, a missing default file is not.
func NewProvider(opts ProviderOptions) (*Provider, error) {
	path := opts.Path
	if path == "" {
		found, ok := FindConfigFile()
		if !ok {
			logging.Debug("No config file found, using environment only")
			return &Provider{values: map[string]string{}, lookupEnv: os.LookupEnv, store: opts.Store}, nil
		}
		path = found
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	values, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}

	return &Provider{
		values:    values,
		source:    path,
		lookupEnv: os.LookupEnv,
		store:     opts.Store,
	}, nil
}

// NewProviderFromValues builds a provider over an in-memory map with
// environment fallback and no credential store.
func NewProviderFromValues(values map[string]string) *Provider {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Provider{values: copied, lookupEnv: os.LookupEnv}
}

// WithStore returns a copy of p that falls back to store
func (p *Provider) WithStore(store *CredentialStore) *Provider {
	cp := *p
	cp.store = store
	return &cp
}

// Source returns the config file path, or "" when none was loaded
func (p *Provider) Source() string {
	return p.source
}

// EnvName maps a config key to its upper-snake environment variable name
func EnvName(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return strings.ToUpper(r.Replace(key))
}

// Lookup returns the value for key and whether any source defined it
func (p *Provider) Lookup(key string) (string, bool) {
	if v, ok := p.values[key]; ok {
		return v, true
	}

	if p.lookupEnv != nil {
		if v, ok := p.lookupEnv(key); ok {
			return v, true
		}
		if v, ok := p.lookupEnv(EnvName(key)); ok {
			return v, true
		}
	}

	if p.store != nil {
		v, ok, err := p.store.Get(key)
		if err != nil {
			logging.Debug("Credential store lookup failed", "key", key, "error", err)
			return "", false
		}
		if ok {
			return v, true
		}
	}

	return "", false
}

// Get returns the value for key, or "" when undefined
func (p *Provider) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

// Credentials resolves git.username and git.password
func (p *Provider) Credentials() Credentials {
	return Credentials{
		Username: p.Get(KeyUsername),
		Password: p.Get(KeyPassword),
	}
}

// Committer resolves git.committer and git.email
func (p *Provider) Committer() Identity {
	return Identity{
		Name:  p.Get(KeyCommitter),
		Email: p.Get(KeyEmail),
	}
}

// Values returns a copy of the file-backed values
func (p *Provider) Values() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}
