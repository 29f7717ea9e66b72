// Package config loads reminisce configuration from a TOML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all reminisce configuration.
type Config struct {
	DBPath string `toml:"db_path"`

	LLM LLMConfig `toml:"llm"`
}

// LLMConfig configures the text-generation provider.
type LLMConfig struct {
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	APIKeyEnv       string  `toml:"api_key_env"`
	MaxPromptTokens int     `toml:"max_prompt_tokens"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBPath: "~/.reminisce/reminisce.db",
		LLM: LLMConfig{
			Model:           "gpt-4o",
			Temperature:     0.2,
			TimeoutSeconds:  60,
			APIKeyEnv:       "OPENAI_API_KEY",
			MaxPromptTokens: 8192,
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := configPath()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.DBPath = expandHome(cfg.DBPath)

	return cfg, nil
}

// APIKey resolves the provider API key from the environment variable the
// config names.
func (c Config) APIKey() string {
	env := c.LLM.APIKeyEnv
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	return os.Getenv(env)
}

// configPath returns the config file location.
// Uses $XDG_CONFIG_HOME/reminisce if set, otherwise ~/.config/reminisce.
func configPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reminisce", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "reminisce", "config.toml")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
