package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Agent.MaxAttempts)
	assert.Equal(t, "custom_parsers", cfg.Agent.ParserDir)
	assert.Equal(t, "data", cfg.Agent.FixtureRoot)
	assert.Equal(t, "python", cfg.Agent.Language)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, DefaultSuccessMarker, cfg.Validator.SuccessMarker)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Agent.MaxAttempts)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
agent:
  max_attempts: 5
  fixture_root: fixtures
llm:
  model: gemini-2.5-pro
  timeout: 45s
validator:
  success_marker: ALL_GOOD
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Agent.MaxAttempts)
	assert.Equal(t, "fixtures", cfg.Agent.FixtureRoot)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, "ALL_GOOD", cfg.Validator.SuccessMarker)

	// Unset fields keep defaults
	assert.Equal(t, "custom_parsers", cfg.Agent.ParserDir)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("api key and model", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key-123")
		t.Setenv("PARSEWRIGHT_MODEL", "gemini-env-model")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "test-key-123", cfg.LLM.APIKey)
		assert.Equal(t, "gemini-env-model", cfg.LLM.Model)
	})

	t.Run("paths and budget", func(t *testing.T) {
		t.Setenv("PARSEWRIGHT_PARSER_DIR", "out")
		t.Setenv("PARSEWRIGHT_FIXTURE_ROOT", "fx")
		t.Setenv("PARSEWRIGHT_MAX_ATTEMPTS", "7")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "out", cfg.Agent.ParserDir)
		assert.Equal(t, "fx", cfg.Agent.FixtureRoot)
		assert.Equal(t, 7, cfg.Agent.MaxAttempts)
	})

	t.Run("bad max attempts ignored", func(t *testing.T) {
		t.Setenv("PARSEWRIGHT_MAX_ATTEMPTS", "not-a-number")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 3, cfg.Agent.MaxAttempts)
	})

	t.Run("env wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: from-file\n"), 0644))
		t.Setenv("PARSEWRIGHT_MODEL", "from-env")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.LLM.Model)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".parsewright", "config.yaml")

	cfg := DefaultConfig()
	cfg.Agent.MaxAttempts = 9
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Agent.MaxAttempts)
}

func TestTimeouts_BadDurationFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "garbage"
	cfg.Validator.Timeout = "garbage"

	assert.Equal(t, 120*time.Second, cfg.GetLLMTimeout())
	assert.Equal(t, 120*time.Second, cfg.GetValidatorTimeout())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.MaxAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Validator.SuccessMarker = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Agent.SampleLimit = 0
	assert.Error(t, cfg.Validate())
}
