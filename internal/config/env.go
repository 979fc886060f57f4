package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment variables read by interpagent.
const (
	EnvModelName = "OPENAI_MODEL_NAME"
	EnvAPIKey    = "OPENAI_API_KEY"
	EnvEndpoint  = "OPENAI_ENDPOINT"
	EnvProvider  = "INTERPAGENT_PROVIDER"
	EnvLogLevel  = "INTERPAGENT_LOG_LEVEL"
)

// envSettings holds raw env values.
type envSettings struct {
	Model    string `env:"OPENAI_MODEL_NAME"`
	APIKey   string `env:"OPENAI_API_KEY"`
	Endpoint string `env:"OPENAI_ENDPOINT"`
	Provider string `env:"INTERPAGENT_PROVIDER"`
	LogLevel string `env:"INTERPAGENT_LOG_LEVEL"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment values on c.
func (c *Config) applyEnv() error {
	var e envSettings
	if err := ParseEnv(&e); err != nil {
		return err
	}
	c.Model = e.Model
	c.APIKey = e.APIKey
	c.Endpoint = e.Endpoint
	if e.Provider != "" {
		c.Provider = e.Provider
	}
	if e.LogLevel != "" {
		c.Logging.Level = e.LogLevel
	}
	return nil
}
