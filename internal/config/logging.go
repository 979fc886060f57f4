package config

import "interpagent/internal/logging"

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // empty means stderr
}

// LoggerConfig converts the file settings for logging.New. verbose forces
// the debug level.
func (c LoggingConfig) LoggerConfig(verbose bool) logging.Config {
	lc := logging.Config{Level: c.Level, Format: c.Format, File: c.File}
	if verbose {
		lc.Level = "debug"
	}
	return lc
}
