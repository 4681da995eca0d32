package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crm-engine/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	cfg, err := config.LoadConfig(t.TempDir())

	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, float64(10), cfg.Server.RateLimit.RPS)
	assert.Equal(t, 20, cfg.Server.RateLimit.Burst)

	assert.Equal(t, "data.csv", cfg.Storage.DataFile)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)

	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	assert.True(t, cfg.Assistant.Enabled)
	assert.Equal(t, "", cfg.Assistant.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Assistant.BaseURL)
	assert.Equal(t, "gpt-4", cfg.Assistant.Model)
	assert.Equal(t, 300, cfg.Assistant.MaxTokens)
	assert.Equal(t, 0.7, cfg.Assistant.Temperature)
	assert.Equal(t, 60*time.Second, cfg.Assistant.Timeout)

	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "crm-engine", cfg.Events.ExchangeName)
}

func TestLoadConfig_FromFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	content := []byte(
		"server:\n" +
			"  port: 9999\n" +
			"storage:\n" +
			"  dataFile: /var/lib/crm/records.csv\n" +
			"assistant:\n" +
			"  enabled: false\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644))

	cfg, err := config.LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/var/lib/crm/records.csv", cfg.Storage.DataFile)
	assert.False(t, cfg.Assistant.Enabled)
	// Values absent from the file keep their defaults.
	assert.Equal(t, "gpt-4", cfg.Assistant.Model)
}

func TestLoadConfig_APIKeyFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Assistant.APIKey)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [not: valid"), 0o644))

	cfg, err := config.LoadConfig(dir)

	require.Error(t, err)
	assert.Nil(t, cfg)
}
