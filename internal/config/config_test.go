package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	cfg, err := NewConfigFromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaultsProduceValidConfig(t *testing.T) {
	cfg := newDefaultConfig(t)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Network.NavigationTimeout)
	assert.Equal(t, 2*time.Second, cfg.Network.PostLoadWait)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Automation.MaxLLMTurns)
	assert.Equal(t, 500*time.Millisecond, cfg.Automation.StepDelay)
	assert.True(t, cfg.Browser.Headless)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("PAGEHOUND_SERVER_PORT", "9091")
	t.Setenv("PAGEHOUND_LLM_MODEL", "llama3.2:3b")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, "llama3.2:3b", cfg.LLM.Model)
}

func TestValidateRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logger.Format = "xml" },
			wantErr: "logger.format",
		},
		{
			name:    "unknown llm provider",
			mutate:  func(c *Config) { c.LLM.Provider = "bard" },
			wantErr: "llm.provider",
		},
		{
			name: "gemini requires an api key",
			mutate: func(c *Config) {
				c.LLM.Provider = "gemini"
				c.LLM.APIKey = ""
			},
			wantErr: "llm.api_key",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.LLM.Temperature = 3.5 },
			wantErr: "llm.temperature",
		},
		{
			name:    "zero llm turns",
			mutate:  func(c *Config) { c.Automation.MaxLLMTurns = 0 },
			wantErr: "max_llm_turns",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newDefaultConfig(t)
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
