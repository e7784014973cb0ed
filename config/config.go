package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the middleware
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Confluence ConfluenceConfig `mapstructure:"confluence"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Session    SessionConfig    `mapstructure:"session"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// ConfluenceConfig contains the document backend connection settings.
// APIToken pairs with User for basic auth against the Confluence REST API.
type ConfluenceConfig struct {
	URL      string        `mapstructure:"url"`
	User     string        `mapstructure:"user"`
	APIToken string        `mapstructure:"api_token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (c ConfluenceConfig) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("confluence.url is required")
	}
	if strings.TrimSpace(c.User) == "" || strings.TrimSpace(c.APIToken) == "" {
		return fmt.Errorf("confluence.user and confluence.api_token are required")
	}
	return nil
}

// LLMConfig contains model provider configuration
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, gemini
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// EngineConfig bounds the orchestration loop
type EngineConfig struct {
	MaxTurns     int    `mapstructure:"max_turns"`
	SystemPrompt string `mapstructure:"system_prompt"`
}

// SessionConfig selects and tunes the conversation store
type SessionConfig struct {
	Store string        `mapstructure:"store"` // inmemory, redis
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelemetryConfig toggles the /metrics endpoint
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file and environment. A malformed
// config file is a startup-time fatal.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("confluence.timeout", 30*time.Second)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("engine.max_turns", 8)
	viper.SetDefault("session.store", "inmemory")
	viper.SetDefault("session.ttl", 12*time.Hour)
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("MCP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // MCP_CONFLUENCE_URL, MCP_LLM_API_KEY, ...

	if err := viper.ReadInConfig(); err != nil {
		// config file is optional when everything comes from the environment
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	return &config
}
