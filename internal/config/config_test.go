package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.LLM.Primary.Provider)
	assert.Equal(t, "claude", cfg.LLM.Fallback.Provider)
	assert.Equal(t, 5, cfg.Pipeline.MaxValidationRetries)
	assert.Equal(t, 20, cfg.Pipeline.DishonestyThreshold)
	assert.Equal(t, 60, cfg.Batch.MatchScoreThreshold)
	assert.Equal(t, "file", cfg.KeyState.Backend)
	assert.Equal(t, "compile_resume", cfg.Compiler.Command)
	assert.Equal(t, 10*time.Second, cfg.Compiler.Timeout)
	assert.True(t, cfg.Compiler.Enabled)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
llm:
  primary:
    provider: claude
    model: claude-sonnet-4-0
    key_env: ANTHROPIC_API_KEY
  max_retries: 7
pipeline:
  section_paths:
    - profile.description
    - skills
  dishonesty_threshold: 35
user_name: "Jane Doe"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "claude", cfg.LLM.Primary.Provider)
	assert.Equal(t, "claude-sonnet-4-0", cfg.LLM.Primary.Model)
	assert.Equal(t, 7, cfg.LLM.MaxRetries)
	assert.Equal(t, []string{"profile.description", "skills"}, cfg.Pipeline.SectionPaths)
	assert.Equal(t, 35, cfg.Pipeline.DishonestyThreshold)
	assert.Equal(t, "Jane Doe", cfg.UserName)

	// Untouched sections keep their defaults.
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.LLM.Fallback.Model)
	assert.Equal(t, 8192, cfg.LLM.MaxTokens)
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("CONFIGTEST_REDIS", "redis://example.test:6379/2")
	path := writeConfig(t, `
redis:
  url: "${CONFIGTEST_REDIS}"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://example.test:6379/2", cfg.Redis.URL)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
logging:
  level: warn
`)
	t.Setenv("PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("USER_NAME", "Env Name")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Environment wins over the file.
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "Env Name", cfg.UserName)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("defaults validate", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing primary model", func(t *testing.T) {
		cfg := base()
		cfg.LLM.Primary.Model = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "primary model")
	})

	t.Run("missing fallback key env", func(t *testing.T) {
		cfg := base()
		cfg.LLM.Fallback.KeyEnv = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fallback model")
	})

	t.Run("retry floor", func(t *testing.T) {
		cfg := base()
		cfg.Pipeline.MaxValidationRetries = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("threshold range", func(t *testing.T) {
		cfg := base()
		cfg.Pipeline.DishonestyThreshold = 101
		assert.Error(t, cfg.Validate())
	})
}
