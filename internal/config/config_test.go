package config

import (
	"testing"
	"time"

	"image-extractor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "LOG_LEVEL", "BROWSER_PATH", "HEADLESS", "NAVIGATION_TIMEOUT",
	"SETTLE_DELAY", "API_TIMEOUT", "API_RATE_LIMIT", "MAX_TABS", "USER_AGENT",
}

// clearEnv blanks every key; viper treats empty variables as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	config, err := Load()
	require.NoError(t, err)

	defaults := types.DefaultConfig()
	assert.Equal(t, "3000", config.Port)
	assert.Equal(t, "info", config.LogLevel)
	assert.Empty(t, config.BrowserPath)
	assert.True(t, config.Headless)
	assert.Equal(t, 60*time.Second, config.NavigationTimeout)
	assert.Equal(t, 2*time.Second, config.SettleDelay)
	assert.Equal(t, 30*time.Second, config.APITimeout)
	assert.Equal(t, 10.0, config.APIRateLimit)
	assert.Equal(t, 8, config.MaxTabs)
	assert.Equal(t, defaults.UserAgent, config.UserAgent)
	assert.Equal(t, defaults.APIUserAgent, config.APIUserAgent)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BROWSER_PATH", "/opt/chrome/chrome")
	t.Setenv("HEADLESS", "false")
	t.Setenv("NAVIGATION_TIMEOUT", "45s")
	t.Setenv("SETTLE_DELAY", "1500ms")
	t.Setenv("API_TIMEOUT", "10s")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("MAX_TABS", "3")
	t.Setenv("USER_AGENT", "test-agent")

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", config.Port)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "/opt/chrome/chrome", config.BrowserPath)
	assert.False(t, config.Headless)
	assert.Equal(t, 45*time.Second, config.NavigationTimeout)
	assert.Equal(t, 1500*time.Millisecond, config.SettleDelay)
	assert.Equal(t, 10*time.Second, config.APITimeout)
	assert.Equal(t, 2.5, config.APIRateLimit)
	assert.Equal(t, 3, config.MaxTabs)
	assert.Equal(t, "test-agent", config.UserAgent)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"NAVIGATION_TIMEOUT", "-1s"},
		{"API_TIMEOUT", "-5s"},
		{"SETTLE_DELAY", "-1s"},
		{"MAX_TABS", "-2"},
		{"API_RATE_LIMIT", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			config, err := Load()
			assert.Nil(t, config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
