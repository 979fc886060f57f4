package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv empties every variable Load reads, restoring them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvModelName, EnvAPIKey, EnvEndpoint, EnvProvider, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(EnvModelName, "gpt-test")
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvEndpoint, "http://localhost:1234/v1")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 8, cfg.MaxToolRounds)
	assert.Equal(t, 30*time.Second, cfg.GetToolTimeout())
	assert.Equal(t, 120*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidateNamesEveryMissingSetting(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "sk-test")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err, "a named config file must exist")

	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.ErrorIs(t, err, ErrMissingSetting)
	assert.Equal(t, "missing required setting: OPENAI_MODEL_NAME, OPENAI_ENDPOINT", err.Error())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv(EnvLogLevel, "debug")

	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: gemini
instructions: "Only print."
max_tool_rounds: 3
tool_timeout: 2s
logging:
  level: warn
  format: console
  file: /tmp/interpagent.log
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "Only print.", cfg.Instructions)
	assert.Equal(t, 3, cfg.MaxToolRounds)
	assert.Equal(t, 2*time.Second, cfg.GetToolTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level, "env beats file")
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "gpt-test", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "http://localhost:1234/v1", cfg.Endpoint)

	t.Setenv(EnvProvider, "openai")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
}

func TestValidateRejectsBadValues(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Provider = "anthropic"
	assert.ErrorContains(t, cfg.Validate(), "invalid provider")

	cfg.Provider = "openai"
	cfg.MaxToolRounds = 0
	assert.ErrorContains(t, cfg.Validate(), "max_tool_rounds")

	cfg.MaxToolRounds = 1
	cfg.ToolTimeout = "soon"
	assert.ErrorContains(t, cfg.Validate(), "invalid tool_timeout")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_tool_rounds: [1"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "from-shell")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OPENAI_MODEL_NAME=from-dotenv\nOPENAI_API_KEY=from-file\n"), 0644))

	// An empty variable counts as set, so unset it for the dotenv value to apply.
	require.NoError(t, os.Unsetenv(EnvModelName))
	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-dotenv", os.Getenv(EnvModelName))
	assert.Equal(t, "from-shell", os.Getenv(EnvAPIKey), "existing variables win")

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, LoadDotEnv(""))
}

func TestLoggerConfig(t *testing.T) {
	lc := LoggingConfig{Level: "warn", Format: "json", File: "x.log"}.LoggerConfig(true)
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "x.log", lc.File)
}
