package cliconfig

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from a .env file into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" || !FileExists(path) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnvConfig applies configuration from environment variables (REQGATE_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("extensions-dir", os.Getenv("REQGATE_EXTENSIONS_DIR"), &cfg.ExtensionsDir)
	s.setString("manifest", os.Getenv("REQGATE_MANIFEST"), &cfg.Manifest)
	s.setString("file", os.Getenv("REQGATE_FILE"), &cfg.File)
	s.setString("state-dir", os.Getenv("REQGATE_STATE_DIR"), &cfg.StateDir)
	s.setString("runtime-version", os.Getenv("REQGATE_RUNTIME_VERSION"), &cfg.RuntimeVersion)
	s.setString("host-version", os.Getenv("REQGATE_HOST_VERSION"), &cfg.HostVersion)
	s.setString("title", os.Getenv("REQGATE_TITLE"), &cfg.Title)
	s.setString("php", os.Getenv("REQGATE_MIN_RUNTIME_VERSION"), &cfg.MinRuntimeVersion)
	s.setString("wp", os.Getenv("REQGATE_MIN_HOST_VERSION"), &cfg.MinHostVersion)
	s.setString("log-level", os.Getenv("REQGATE_LOG_LEVEL"), &cfg.LogLevel)

	return s.setDuration("debounce", os.Getenv("REQGATE_DEBOUNCE_DELAY"), &cfg.DebounceDelay)
}
