package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kgit/internal/logging"

	"github.com/adrg/xdg"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "kgit" // application name used for config directory

// Well-known configuration keys
const (
	KeyUsername  = "git.username"
	KeyPassword  = "git.password"
	KeyCommitter = "git.committer"
	KeyEmail     = "git.email"
	KeyRemoteURL = "git.url"
)

// localConfigNames are looked up in the working directory, then in the config dir.
var localConfigNames = []string{"kgit.properties", "auth.properties", "kgit.yaml"}

// ConfigDir returns the per-user configuration directory
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, APP_NAME)
}

// CandidatePaths lists the config files FindConfigFile checks, in order.
func CandidatePaths() []string {
	paths := make([]string, 0, len(localConfigNames)+3)
	for _, name := range localConfigNames {
		paths = append(paths, name)
	}
	dir := ConfigDir()
	paths = append(paths,
		filepath.Join(dir, "kgit.properties"),
		filepath.Join(dir, "auth.properties"),
		filepath.Join(dir, "config.yaml"),
	)
	return paths
}

// FindConfigFile returns the path to the first existing config file, and whether one exists.
func FindConfigFile() (string, bool) {
	for _, path := range CandidatePaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			logging.Debug("Config found", "path", path)
			return path, true
		}
	}
	return "", false
}

// LoadFrom reads a flat key/value config file. Files ending in .properties are
// parsed as Java properties, .yaml/.yml files as YAML with nested maps
// flattened into dotted keys.
func LoadFrom(path string) (map[string]string, error) {
	logging.Debug("Reading config file", "path", path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties":
		p, err := properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		values := make(map[string]string, p.Len())
		for _, key := range p.Keys() {
			v, _ := p.Get(key)
			values[key] = v
		}
		return values, nil

	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		var raw map[string]interface{}
		if err := yaml.NewDecoder(f).Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return map[string]string{}, nil
			}
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		values := make(map[string]string)
		flatten("", raw, values)
		return values, nil

	default:
		return nil, fmt.Errorf("unsupported config file format: %s", path)
	}
}

func flatten(prefix string, in map[string]interface{}, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// SaveTo writes values to path as a flat YAML document
func SaveTo(path string, values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Restrictive permissions, the file may hold a password
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: values[k]},
		)
	}

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
