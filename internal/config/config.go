// Package config holds all parsewright configuration.
// Configuration is loaded from .parsewright/config.yaml (optional) and
// overridden by environment variables. An explicit Config is passed into the
// refinement loop at construction; nothing reads globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the workspace-relative config file location.
const DefaultConfigPath = ".parsewright/config.yaml"

// Config holds all parsewright configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Agent loop settings
	Agent AgentConfig `yaml:"agent"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Validation subprocess settings
	Validator ValidatorConfig `yaml:"validator"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AgentConfig configures the refinement loop and artifact layout.
type AgentConfig struct {
	// MaxAttempts is the retry budget: the maximum number of
	// generate/write/validate cycles before giving up.
	MaxAttempts int `yaml:"max_attempts"`

	// ParserDir is where generated parser artifacts are written,
	// one <target>_parser.py per target.
	ParserDir string `yaml:"parser_dir"`

	// FixtureRoot is where fixture bundles live: <root>/<target>/ holds
	// <target>_sample.pdf and <target>_expected.csv.
	FixtureRoot string `yaml:"fixture_root"`

	// Language tags the fenced code block the model is asked to emit.
	Language string `yaml:"language"`

	// SampleLimit bounds the PDF text sample embedded in prompts, in bytes.
	SampleLimit int `yaml:"sample_limit"`
}

// LLMConfig configures the generative collaborator.
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
}

// ValidatorConfig configures the external validation subprocess.
type ValidatorConfig struct {
	// Command is the argv template; the literal "{target}" is replaced with
	// the target identifier. Empty means the built-in harness
	// (self-exec "verify {target}").
	Command []string `yaml:"command"`

	// SuccessMarker must appear in the captured output, in addition to a
	// zero exit status, for a run to count as PASS.
	SuccessMarker string `yaml:"success_marker"`

	// Python is the interpreter the built-in harness uses to run artifacts.
	Python string `yaml:"python"`

	Timeout string `yaml:"timeout"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultSuccessMarker is the sentinel the built-in harness prints.
// It is the single contract between validator and controller; external
// validation scripts may configure their own marker.
const DefaultSuccessMarker = "VALIDATION_OK"

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "parsewright",
		Version: "0.3.0",

		Agent: AgentConfig{
			MaxAttempts: 3,
			ParserDir:   "custom_parsers",
			FixtureRoot: "data",
			Language:    "python",
			SampleLimit: 3000,
		},

		LLM: LLMConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.1,
			Timeout:     "120s",
		},

		Validator: ValidatorConfig{
			SuccessMarker: DefaultSuccessMarker,
			Python:        "python3",
			Timeout:       "120s",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("PARSEWRIGHT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if dir := os.Getenv("PARSEWRIGHT_PARSER_DIR"); dir != "" {
		c.Agent.ParserDir = dir
	}
	if root := os.Getenv("PARSEWRIGHT_FIXTURE_ROOT"); root != "" {
		c.Agent.FixtureRoot = root
	}
	if v := os.Getenv("PARSEWRIGHT_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Agent.MaxAttempts = n
		}
	}
	if py := os.Getenv("PARSEWRIGHT_PYTHON"); py != "" {
		c.Validator.Python = py
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetValidatorTimeout returns the validator timeout as a duration.
func (c *Config) GetValidatorTimeout() time.Duration {
	d, err := time.ParseDuration(c.Validator.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// Validate checks invariants that would otherwise fail deep inside the loop.
func (c *Config) Validate() error {
	if c.Agent.MaxAttempts < 1 {
		return fmt.Errorf("agent.max_attempts must be >= 1, got %d", c.Agent.MaxAttempts)
	}
	if c.Agent.SampleLimit < 1 {
		return fmt.Errorf("agent.sample_limit must be >= 1, got %d", c.Agent.SampleLimit)
	}
	if c.Validator.SuccessMarker == "" {
		return fmt.Errorf("validator.success_marker must not be empty")
	}
	return nil
}
