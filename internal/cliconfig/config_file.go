package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ExtensionsDir     string `toml:"extensions_dir"`
	Manifest          string `toml:"manifest"`
	File              string `toml:"file"`
	StateDir          string `toml:"state_dir"`
	RuntimeVersion    string `toml:"runtime_version"`
	HostVersion       string `toml:"host_version"`
	Title             string `toml:"title"`
	MinRuntimeVersion string `toml:"min_runtime_version"`
	MinHostVersion    string `toml:"min_host_version"`
	LogLevel          string `toml:"log_level"`
	DebounceDelay     string `toml:"debounce_delay"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.reqgate/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".reqgate", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("extensions-dir", fc.ExtensionsDir, &cfg.ExtensionsDir)
	s.setString("manifest", fc.Manifest, &cfg.Manifest)
	s.setString("file", fc.File, &cfg.File)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("runtime-version", fc.RuntimeVersion, &cfg.RuntimeVersion)
	s.setString("host-version", fc.HostVersion, &cfg.HostVersion)
	s.setString("title", fc.Title, &cfg.Title)
	s.setString("php", fc.MinRuntimeVersion, &cfg.MinRuntimeVersion)
	s.setString("wp", fc.MinHostVersion, &cfg.MinHostVersion)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	return s.setDuration("debounce", fc.DebounceDelay, &cfg.DebounceDelay)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
