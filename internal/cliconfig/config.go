package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/reqgate/internal/manifest"
)

// Config holds CLI configuration for reqgate.
type Config struct {
	ExtensionsDir string
	Manifest      string
	File          string
	StateDir      string

	RuntimeVersion string
	HostVersion    string

	// Overrides applied on top of the manifest.
	Title             string
	MinRuntimeVersion string
	MinHostVersion    string

	LogLevel      string
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		StateDir:      defaultStateDir(),
		LogLevel:      "info",
		DebounceDelay: 100 * time.Millisecond,
	}
}

func defaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".reqgate", "state")
	}
	return ""
}

// Validate checks the configuration for errors and sets derived defaults.
// A directory given as Manifest is replaced by the manifest file inside it,
// and ExtensionsDir defaults to the parent of the extension's directory.
func (c *Config) Validate() error {
	if c.HostVersion == "" {
		return fmt.Errorf("host-version is required")
	}
	if c.RuntimeVersion == "" {
		return fmt.Errorf("runtime-version is required")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	if c.DebounceDelay <= 0 {
		return fmt.Errorf("debounce delay must be positive")
	}

	if c.Manifest != "" {
		info, err := os.Stat(c.Manifest)
		if err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		if info.IsDir() {
			p, err := manifest.Find(c.Manifest)
			if err != nil {
				return err
			}
			c.Manifest = p
		}
		if c.ExtensionsDir == "" {
			c.ExtensionsDir = filepath.Dir(filepath.Dir(c.Manifest))
		}
	}
	return nil
}

// Level returns the parsed log level. Call after Validate.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Settings merges the CLI overrides into a manifest mapping. Only non-empty
// overrides are applied. base is not modified.
func (c Config) Settings(base map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+4)
	for k, v := range base {
		out[k] = v
	}
	if c.Title != "" {
		out["title"] = c.Title
	}
	if c.MinRuntimeVersion != "" {
		out["php"] = c.MinRuntimeVersion
	}
	if c.MinHostVersion != "" {
		out["wp"] = c.MinHostVersion
	}
	if c.File != "" {
		out["file"] = c.File
	}
	return out
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}
