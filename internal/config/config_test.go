package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "quoteforge", cfg.App.Name)
	assert.Equal(t, "http://localhost:4200", cfg.Target.BaseURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Element)
	assert.Equal(t, 5*time.Minute, cfg.Timeouts.Scenario)
	assert.False(t, cfg.Storage.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TARGET_BASE_URL", "https://quoting.staging.example.com")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("TIMEOUT_ELEMENT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://quoting.staging.example.com", cfg.Target.BaseURL)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Element)
}

func TestValidate(t *testing.T) {
	t.Run("bad base url", func(t *testing.T) {
		t.Setenv("TARGET_BASE_URL", "quoting.example.com")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http(s)")
	})

	t.Run("storage enabled requires endpoint", func(t *testing.T) {
		t.Setenv("STORAGE_ENABLED", "true")
		t.Setenv("STORAGE_ENDPOINT", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STORAGE_ENDPOINT")
	})

	t.Run("non-positive poll", func(t *testing.T) {
		t.Setenv("TIMEOUT_POLL", "0s")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TIMEOUT_POLL")
	})
}

func TestGetLogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	assert.Equal(t, "info", cfg.GetLogLevel())
	cfg.Debug = true
	assert.Equal(t, "debug", cfg.GetLogLevel())
}
