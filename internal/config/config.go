package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the backend address used when nothing else is set.
const DefaultBaseURL = "http://127.0.0.1:8000/api/v1"

// Config holds all client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Mentor  MentorConfig  `yaml:"mentor"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// StorageConfig configures the local database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MentorConfig selects how Q-Mentor questions are answered.
type MentorConfig struct {
	// Mode is "remote" (backend only), "local" (LLM only) or "auto"
	// (backend, falling back to the local LLM).
	Mode string `yaml:"mode"`

	// Provider is the local LLM: "anthropic", "openai", "gemini",
	// "openrouter" or "mock". Empty disables the local advisor.
	Provider string `yaml:"provider"`

	Anthropic  ProviderConfig `yaml:"anthropic"`
	OpenAI     ProviderConfig `yaml:"openai"`
	Gemini     ProviderConfig `yaml:"gemini"`
	OpenRouter ProviderConfig `yaml:"openrouter"`

	MaxAttempts int `yaml:"max_attempts"`
}

// ProviderConfig holds credentials for one LLM provider.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Default returns a Config with defaults applied.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutRaw: "30s",
			Timeout:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Mentor: MentorConfig{
			Mode:        "auto",
			MaxAttempts: 3,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/qpath/config.yaml, falling back to
// ~/.config/qpath/config.yaml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "qpath", "config.yaml")
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// it does not exist) and the environment, in increasing priority.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := parseDurations(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing durations: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the environment value, or an
// empty string when unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&cfg.API.BaseURL, "QPATH_API_URL")
	setString(&cfg.API.TimeoutRaw, "QPATH_API_TIMEOUT")
	setString(&cfg.Storage.Path, "QPATH_DB")
	setString(&cfg.Logging.Level, "QPATH_LOG_LEVEL")
	setString(&cfg.Logging.Format, "QPATH_LOG_FORMAT")

	setString(&cfg.Mentor.Mode, "QPATH_MENTOR_MODE")
	setString(&cfg.Mentor.Provider, "QPATH_MENTOR_PROVIDER")
	setString(&cfg.Mentor.Anthropic.APIKey, "QPATH_ANTHROPIC_API_KEY")
	setString(&cfg.Mentor.Anthropic.Model, "QPATH_ANTHROPIC_MODEL")
	setString(&cfg.Mentor.OpenAI.APIKey, "QPATH_OPENAI_API_KEY")
	setString(&cfg.Mentor.OpenAI.Model, "QPATH_OPENAI_MODEL")
	setString(&cfg.Mentor.OpenAI.BaseURL, "QPATH_OPENAI_BASE_URL")
	setString(&cfg.Mentor.Gemini.APIKey, "QPATH_GEMINI_API_KEY")
	setString(&cfg.Mentor.Gemini.Model, "QPATH_GEMINI_MODEL")
	setString(&cfg.Mentor.OpenRouter.APIKey, "QPATH_OPENROUTER_API_KEY")
	setString(&cfg.Mentor.OpenRouter.Model, "QPATH_OPENROUTER_MODEL")

	if v := os.Getenv("QPATH_MENTOR_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Mentor.MaxAttempts = n
		}
	}

	if cfg.Mentor.Provider == "" {
		discoverProvider(&cfg.Mentor)
	}
}

// discoverProvider probes the vendor API key variables (Gemini, OpenAI,
// Anthropic, OpenRouter) and selects the first one found.
func discoverProvider(m *MentorConfig) {
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		m.Provider = "gemini"
		m.Gemini.APIKey = k
		return
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		m.Provider = "openai"
		m.OpenAI.APIKey = k
		return
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		m.Provider = "anthropic"
		m.Anthropic.APIKey = k
		return
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		m.Provider = "openrouter"
		m.OpenRouter.APIKey = k
	}
}

func parseDurations(cfg *Config) error {
	if cfg.API.TimeoutRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(cfg.API.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("api.timeout: %w", err)
	}
	cfg.API.Timeout = d
	return nil
}

// Validate checks the backend URL, the mentor mode and that the selected
// local provider has an API key.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	switch c.Mentor.Mode {
	case "remote", "local", "auto":
	default:
		return fmt.Errorf("unknown mentor mode: %q", c.Mentor.Mode)
	}

	switch c.Mentor.Provider {
	case "":
		if c.Mentor.Mode == "local" {
			return fmt.Errorf("mentor mode %q requires QPATH_MENTOR_PROVIDER", c.Mentor.Mode)
		}
	case "anthropic":
		if c.Mentor.Anthropic.APIKey == "" {
			return fmt.Errorf("QPATH_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.Mentor.OpenAI.APIKey == "" {
			return fmt.Errorf("QPATH_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Mentor.Gemini.APIKey == "" {
			return fmt.Errorf("QPATH_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.Mentor.OpenRouter.APIKey == "" {
			return fmt.Errorf("QPATH_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown mentor provider: %q", c.Mentor.Provider)
	}
	return nil
}
