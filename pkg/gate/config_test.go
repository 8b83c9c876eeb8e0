package gate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromMap_EmptyKeepsDefaults(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, "7.2.0", cfg.MinRuntimeVersion)
	assert.Equal(t, "4.9", cfg.MinHostVersion)
	assert.Equal(t, "", cfg.Title)
	assert.Equal(t, "", cfg.File)
}

func TestConfigFromMap_NilMap(t *testing.T) {
	cfg, err := ConfigFromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFromMap_OverridesOnlyPresentKeys(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]interface{}{
		"title": "X",
		"php":   "8.0",
	})
	require.NoError(t, err)

	assert.Equal(t, "X", cfg.Title)
	assert.Equal(t, "8.0", cfg.MinRuntimeVersion)
	assert.Equal(t, "4.9", cfg.MinHostVersion)
	assert.Equal(t, "", cfg.File)
}

func TestConfigFromMap_IgnoresUnknownKeys(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]interface{}{
		"wp":      "5.6",
		"file":    "/ext/demo/demo.php",
		"author":  "someone",
		"version": "9.9.9",
	})
	require.NoError(t, err)

	assert.Equal(t, "5.6", cfg.MinHostVersion)
	assert.Equal(t, "/ext/demo/demo.php", cfg.File)
	assert.Equal(t, "7.2.0", cfg.MinRuntimeVersion)
}

func TestConfigFromMap_AcceptsNumbers(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]interface{}{
		"php": 8,
		"wp":  5.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "8", cfg.MinRuntimeVersion)
	assert.Equal(t, "5.5", cfg.MinHostVersion)
}

func TestConfigFromMap_RejectsUnconvertibleValue(t *testing.T) {
	_, err := ConfigFromMap(map[string]interface{}{
		"title": []string{"a", "b"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := Config{Title: "T", MinHostVersion: "6.0"}
	cfg.SetDefaults()

	assert.Equal(t, "7.2.0", cfg.MinRuntimeVersion)
	assert.Equal(t, "6.0", cfg.MinHostVersion)
	assert.Equal(t, "PHP", cfg.RuntimeName)
	assert.Equal(t, "WordPress", cfg.HostName)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MinHostVersion = "latest"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidVersion)
	assert.Contains(t, err.Error(), "wp:")
}
