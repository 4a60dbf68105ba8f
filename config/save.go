package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Save writes key=value into the global or local config file of r,
// keeping the other keys in that file.
func (r *Resolver) Save(global bool, key, value string) (string, error) {
	if !IsKnownKey(key) {
		return "", fmt.Errorf("unknown config key: %s\n\nValid keys: %s", key, strings.Join(Keys, ", "))
	}
	if _, ok := boolKeys[key]; ok {
		if _, err := parseBool(value); err != nil {
			return "", fmt.Errorf("%s must be a boolean: %w", key, err)
		}
	}

	path, perm := r.localPath, os.FileMode(0o644)
	if global {
		path, perm = r.globalPath, 0o600
	}
	if path == "" {
		if global {
			return "", fmt.Errorf("home directory not found")
		}
		return "", fmt.Errorf("git root not found")
	}

	existing := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &existing); err != nil {
			return "", fmt.Errorf("parse %s: %w", path, err)
		}
		if existing == nil {
			existing = make(map[string]any)
		}
	}

	existing[key] = parseValue(key, value)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(existing)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return "", err
	}
	return path, nil
}

var boolKeys = map[string]struct{}{
	KeyDraft:      {},
	KeyPrerelease: {},
	KeyNoColor:    {},
}

// parseValue converts string values to YAML-native types: booleans for
// boolean keys and a list for required_scripts.
func parseValue(key, value string) any {
	if _, ok := boolKeys[key]; ok {
		b, _ := parseBool(value)
		return b
	}
	if key == KeyRequiredScripts {
		return splitList(value)
	}
	return value
}
