// Package config loads interpagent settings from a .env file, an optional
// YAML file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named. It may be absent.
const DefaultPath = "interpagent.yaml"

// ErrMissingSetting is returned when a required environment variable is
// unset or empty.
var ErrMissingSetting = errors.New("missing required setting")

// Config holds all interpagent configuration.
type Config struct {
	// Provider selects the model backend: openai or gemini.
	Provider string `yaml:"provider"`

	// Model, APIKey and Endpoint come from the environment only.
	Model    string `yaml:"-"`
	APIKey   string `yaml:"-"`
	Endpoint string `yaml:"-"`

	// Instructions overrides the agent's system prompt.
	Instructions string `yaml:"instructions"`

	// MaxToolRounds limits model turns that request tools.
	MaxToolRounds int `yaml:"max_tool_rounds"`

	// ToolTimeout bounds a single tool execution.
	ToolTimeout string `yaml:"tool_timeout"`

	// RequestTimeout bounds a single model request.
	RequestTimeout string `yaml:"request_timeout"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:       "openai",
		MaxToolRounds:  8,
		ToolTimeout:    "30s",
		RequestTimeout: "120s",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. An empty path means DefaultPath, which may be missing;
// a named file must exist. Required settings are not checked here, see
// Validate.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	named := path != ""
	if !named {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !named:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetToolTimeout returns the tool timeout as a duration.
func (c *Config) GetToolTimeout() time.Duration {
	d, err := time.ParseDuration(c.ToolTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetRequestTimeout returns the model request timeout as a duration.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// ValidProviders lists all supported model providers.
var ValidProviders = []string{"openai", "gemini"}

// Validate checks everything a model run needs. All missing required
// variables are named in one ErrMissingSetting error.
func (c *Config) Validate() error {
	var missing []string
	for _, s := range []struct{ name, value string }{
		{EnvModelName, c.Model},
		{EnvAPIKey, c.APIKey},
		{EnvEndpoint, c.Endpoint},
	} {
		if s.value == "" {
			missing = append(missing, s.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}

	validProvider := false
	for _, p := range ValidProviders {
		if strings.EqualFold(c.Provider, p) {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid provider: %s (valid: %v)", c.Provider, ValidProviders)
	}

	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("max_tool_rounds must be positive, got %d", c.MaxToolRounds)
	}
	for name, v := range map[string]string{"tool_timeout": c.ToolTimeout, "request_timeout": c.RequestTimeout} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}
