// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is the root configuration for the service, populated from defaults,
// an optional config file, and PAGEHOUND_* environment variables.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Server     ServerConfig     `mapstructure:"server"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	Network    NetworkConfig    `mapstructure:"network"`
	LLM        LLMConfig        `mapstructure:"llm"`
	MCP        MCPConfig        `mapstructure:"mcp"`
	Automation AutomationConfig `mapstructure:"automation"`
}

// LoggerConfig controls structured logging output.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "console"
	OutputPath string `mapstructure:"output_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BrowserConfig controls the Chrome instance and its pages.
type BrowserConfig struct {
	Headless       bool          `mapstructure:"headless"`
	ExecPath       string        `mapstructure:"exec_path"`
	UserAgent      string        `mapstructure:"user_agent"`
	WindowWidth    int           `mapstructure:"window_width"`
	WindowHeight   int           `mapstructure:"window_height"`
	StartupTimeout time.Duration `mapstructure:"startup_timeout"`
	PageRetryDelay time.Duration `mapstructure:"page_retry_delay"`
}

// NetworkConfig controls navigation behavior.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait"`
}

// LLMConfig selects and tunes the language model backend.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // "openai" or "gemini"
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	APITimeout  time.Duration `mapstructure:"api_timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	RateLimit   float64       `mapstructure:"rate_limit"` // requests per second
	MaxRetries  uint64        `mapstructure:"max_retries"`
}

// MCPConfig points the extraction pipeline at the tool server.
type MCPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// AutomationConfig tunes plan execution.
type AutomationConfig struct {
	StepDelay   time.Duration `mapstructure:"step_delay"`
	MaxLLMTurns int           `mapstructure:"max_llm_turns"`
}

// SetDefaults registers the default value for every key on the given viper
// instance. Call before reading config files or the environment so that
// unset keys still unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output_path", "")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 28)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_agent", "")
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.startup_timeout", 30*time.Second)
	v.SetDefault("browser.page_retry_delay", 1*time.Second)

	v.SetDefault("network.navigation_timeout", 30*time.Second)
	v.SetDefault("network.post_load_wait", 2*time.Second)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.endpoint", "http://localhost:11434")
	v.SetDefault("llm.model", "llama3.1:8b")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.api_timeout", 120*time.Second)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.rate_limit", 2.0)
	v.SetDefault("llm.max_retries", 3)

	v.SetDefault("mcp.endpoint", "http://localhost:8080")

	v.SetDefault("automation.step_delay", 500*time.Millisecond)
	v.SetDefault("automation.max_llm_turns", 5)
}

// NewConfigFromViper unmarshals and validates a Config from the given viper
// instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load builds a fully-resolved Config: defaults, then the config file (if
// one is found), then PAGEHOUND_* environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".pagehound")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PAGEHOUND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	return NewConfigFromViper(v)
}

// Validate checks cross-field constraints that defaults alone cannot
// guarantee once a file or the environment has overridden them.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be openai or gemini, got %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "gemini" && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required when llm.provider is gemini")
	}
	if c.Network.NavigationTimeout <= 0 {
		return fmt.Errorf("network.navigation_timeout must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.Automation.MaxLLMTurns <= 0 {
		return fmt.Errorf("automation.max_llm_turns must be positive")
	}
	return nil
}
