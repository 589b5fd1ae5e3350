package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned by Load when the config file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config holds all autotestcase configuration.
type Config struct {
	// AIEngine selects the LLM backend (openai, gemini)
	AIEngine string `yaml:"ai_engine"`

	OpenAI OpenAIConfig `yaml:"openai"`
	Gemini GeminiConfig `yaml:"gemini"`

	// Workbook layout
	Output OutputConfig `yaml:"output"`

	Logging LoggingConfig `yaml:"logging"`
}

// OpenAIConfig configures the OpenAI chat-completions engine.
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     string  `yaml:"timeout"`
	Temperature float64 `yaml:"temperature"`
	MaxRetries  int     `yaml:"max_retries"`
}

// GeminiConfig configures the Google Gemini engine.
type GeminiConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url,omitempty"` // empty = SDK default endpoint
	Timeout     string  `yaml:"timeout"`
	Temperature float64 `yaml:"temperature"`
}

// OutputConfig configures the generated workbook.
type OutputConfig struct {
	SheetName       string `yaml:"sheet_name"`
	DefaultPriority string `yaml:"default_priority"`
	DefaultStatus   string `yaml:"default_status"`
	MaxColumnWidth  int    `yaml:"max_column_width"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
	File   string `yaml:"file"`   // empty = stderr
}

// ValidEngines lists all supported AI engines.
var ValidEngines = []string{"openai", "gemini"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AIEngine: "openai",

		OpenAI: OpenAIConfig{
			Model:       "gpt-4",
			BaseURL:     "https://api.openai.com/v1",
			Timeout:     "120s",
			Temperature: 0.3,
			MaxRetries:  3,
		},

		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "120s",
			Temperature: 0.3,
		},

		Output: OutputConfig{
			SheetName:       "Test Cases",
			DefaultPriority: "Medium",
			DefaultStatus:   "Not Executed",
			MaxColumnWidth:  50,
		},

		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing configuration file: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAI.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if engine := os.Getenv("AUTOTESTCASE_ENGINE"); engine != "" {
		c.AIEngine = engine
	}
}

// Engine returns the normalized engine name.
func (c *Config) Engine() string {
	engine := strings.ToLower(strings.TrimSpace(c.AIEngine))
	if engine == "" {
		return "openai"
	}
	return engine
}

// GetOpenAITimeout returns the OpenAI timeout as a duration.
func (c *Config) GetOpenAITimeout() time.Duration {
	return parseTimeout(c.OpenAI.Timeout)
}

// GetGeminiTimeout returns the Gemini timeout as a duration.
func (c *Config) GetGeminiTimeout() time.Duration {
	return parseTimeout(c.Gemini.Timeout)
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	engine := c.Engine()

	validEngine := false
	for _, e := range ValidEngines {
		if engine == e {
			validEngine = true
			break
		}
	}
	if !validEngine {
		return fmt.Errorf("unsupported AI engine: %s (valid: %v)", c.AIEngine, ValidEngines)
	}

	switch engine {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OpenAI API key not configured (set openai.api_key or OPENAI_API_KEY)")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("Gemini API key not configured (set gemini.api_key or GEMINI_API_KEY)")
		}
	}

	if c.Output.MaxColumnWidth < 0 {
		return fmt.Errorf("output.max_column_width must not be negative")
	}

	return nil
}
