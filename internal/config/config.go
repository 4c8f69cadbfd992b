package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig holds the backend API configuration
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig holds the credential storage configuration
type SessionConfig struct {
	TokenDBPath string `mapstructure:"token_db_path"`
}

// ChatConfig holds the chat session configuration
type ChatConfig struct {
	Greeting string `mapstructure:"greeting"`
}

// LogConfig holds the logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

const defaultGreeting = "Hi! I'm Mira, your AI real estate assistant. How can I help you find your dream home today?"

// Load loads the configuration from config.yaml (or the file named by CONFIG_PATH).
// A missing config file is not an error; defaults cover every field.
func Load() (*Config, error) {
	v := viper.New()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("session.token_db_path", "mira.db")
	v.SetDefault("chat.greeting", defaultGreeting)
	v.SetDefault("log.level", "info")

	// MIRA_API_URL overrides the configured backend, matching the original deployment knob.
	if err := v.BindEnv("api.base_url", "MIRA_API_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
