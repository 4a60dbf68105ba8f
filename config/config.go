package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Locations of vrt configuration.
const (
	EnvPrefix        = "VRT_"
	GlobalConfigDir  = "vrt"
	GlobalConfigFile = "config.yaml"
	LocalConfigName  = ".vrt.yaml"
)

// ResolverConfig configures the resolver.
type ResolverConfig struct {
	// StartDir is where the git root search for the local config
	// begins. Defaults to ".".
	StartDir string

	// HomeDir overrides the user's home directory.
	HomeDir string

	// ErrWriter is where warnings are written. Defaults to os.Stderr.
	ErrWriter io.Writer
}

// Resolver handles hierarchical configuration resolution.
type Resolver struct {
	errw       io.Writer
	globalPath string
	localPath  string
	gitRoot    string

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a resolver for the package at cfg.StartDir.
func NewResolver(cfg ResolverConfig) *Resolver {
	r := &Resolver{errw: cfg.ErrWriter}
	if r.errw == nil {
		r.errw = os.Stderr
	}

	start := cfg.StartDir
	if start == "" {
		start = "."
	}
	if root := findGitRoot(start); root != "" {
		r.gitRoot = root
		r.localPath = filepath.Join(root, LocalConfigName)
	}

	home := cfg.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home != "" {
		r.globalPath = filepath.Join(home, ".config", GlobalConfigDir, GlobalConfigFile)
	}

	return r
}

// NewResolverWithPaths creates a resolver with explicit global and local paths.
func NewResolverWithPaths(globalPath, localPath string, errw io.Writer) *Resolver {
	if errw == nil {
		errw = os.Stderr
	}
	return &Resolver{
		errw:       errw,
		globalPath: globalPath,
		localPath:  localPath,
		gitRoot:    filepath.Dir(localPath),
	}
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	fmt.Fprintf(r.errw, "Warning: %s\n", msg)
}

// Resolved holds the final merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// Keys returns the keys that have a value, sorted.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve builds the final config by merging all sources.
// Priority (highest to lowest): env > local > global > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range Defaults {
		cfg.set(key, value, SourceDefault)
	}
	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves config and applies non-empty flag overrides.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		if value != "" {
			cfg.set(key, value, SourceFlag)
		}
	}
	return cfg
}

func (c *Resolved) set(key, value string, src Source) {
	c.values[key] = value
	c.sources[key] = src
}

func (r *Resolver) applyFile(cfg *Resolved, path string, src Source) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return // missing file is not an error
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if !IsKnownKey(key) {
			r.warn(fmt.Sprintf("%s: unknown key %q", path, key))
			continue
		}
		if s := toString(value); s != "" {
			cfg.set(key, s, src)
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	for _, key := range Keys {
		if value := os.Getenv(EnvPrefix + strings.ToUpper(key)); value != "" {
			cfg.set(key, value, SourceEnv)
		}
	}

	// Standard NO_COLOR convention: presence disables color.
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.set(KeyNoColor, "true", SourceEnv)
	}
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := toString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// findGitRoot walks up from startDir looking for a .git entry. Worktrees
// and submodules use a .git file, so any entry counts.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
