package gate

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Default minimums and labels.
const (
	DefaultMinRuntimeVersion = "7.2.0"
	DefaultMinHostVersion    = "4.9"
	DefaultRuntimeName       = "PHP"
	DefaultHostName          = "WordPress"
)

// Config holds the requirements of one extension.
// Use DefaultConfig() or ConfigFromMap() to get a Config with defaults applied.
type Config struct {
	// Title is the human-readable extension name used in notices.
	Title string `mapstructure:"title"`

	// MinRuntimeVersion is the minimum runtime version. Default: 7.2.0
	MinRuntimeVersion string `mapstructure:"php"`

	// MinHostVersion is the minimum host framework version. Default: 4.9
	MinHostVersion string `mapstructure:"wp"`

	// File addresses the extension within the host, usually the path to its
	// main file. It is resolved through Host.ResolveIdentifier on deactivation.
	File string `mapstructure:"file"`

	// RuntimeName labels the runtime in notices. Default: PHP
	RuntimeName string `mapstructure:"runtime_name"`

	// HostName labels the host framework in notices. Default: WordPress
	HostName string `mapstructure:"host_name"`
}

// DefaultConfig returns a Config with the default minimums.
func DefaultConfig() Config {
	return Config{
		MinRuntimeVersion: DefaultMinRuntimeVersion,
		MinHostVersion:    DefaultMinHostVersion,
		RuntimeName:       DefaultRuntimeName,
		HostName:          DefaultHostName,
	}
}

// ConfigFromMap builds a Config from a settings mapping. Only the keys
// title, php, wp and file (plus runtime_name and host_name) are read; any
// other key is ignored. Absent keys keep their defaults. Numeric values are
// accepted for version keys.
func ConfigFromMap(m map[string]interface{}) (Config, error) {
	cfg := DefaultConfig()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := dec.Decode(m); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// SetDefaults fills empty fields with their default values.
// Title and File have no default.
func (c *Config) SetDefaults() {
	if c.MinRuntimeVersion == "" {
		c.MinRuntimeVersion = DefaultMinRuntimeVersion
	}
	if c.MinHostVersion == "" {
		c.MinHostVersion = DefaultMinHostVersion
	}
	if c.RuntimeName == "" {
		c.RuntimeName = DefaultRuntimeName
	}
	if c.HostName == "" {
		c.HostName = DefaultHostName
	}
}

// Validate checks that both minimum versions parse. New does not call it;
// a gate built from an invalid config simply fails its checks.
func (c Config) Validate() error {
	if _, err := parseVersion(c.MinRuntimeVersion); err != nil {
		return fmt.Errorf("php: %w", err)
	}
	if _, err := parseVersion(c.MinHostVersion); err != nil {
		return fmt.Errorf("wp: %w", err)
	}
	return nil
}
