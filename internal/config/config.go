package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSystemPrompt seeds every new session transcript.
const DefaultSystemPrompt = "You are a helpful AI assistant. Be concise and polite."

// OpenAIConfig holds connection settings shared by the OpenAI-compatible
// generator and embedder.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries,omitempty"`
}

// GeneratorConfig selects and configures the chat completion backend.
type GeneratorConfig struct {
	Type   string        `yaml:"type"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string        `yaml:"type"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
}

// CatalogConfig selects and configures the service catalog backend.
type CatalogConfig struct {
	Type   string       `yaml:"type"`
	Bolt   *FileConfig  `yaml:"bolt,omitempty"`
	SQLite *FileConfig  `yaml:"sqlite,omitempty"`
	Redis  *RedisConfig `yaml:"redis,omitempty"`
	Seed   *SeedConfig  `yaml:"seed,omitempty"`
}

// FileConfig points a file-backed catalog at its database.
type FileConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig contains connection details for a Redis catalog.
type RedisConfig struct {
	Addrs     []string `yaml:"addrs"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// SeedConfig controls start-up seeding of the in-memory catalog.
type SeedConfig struct {
	Builtin bool   `yaml:"builtin"`
	Files   string `yaml:"files,omitempty"`
}

// RetrievalConfig tunes /service lookups.
type RetrievalConfig struct {
	TopK         int `yaml:"top_k"`
	ExcerptChars int `yaml:"excerpt_chars"`
}

// HistoryConfig configures session transcripts.
type HistoryConfig struct {
	SystemPrompt string `yaml:"system_prompt"`
	MaxMessages  int    `yaml:"max_messages"`
	SessionID    string `yaml:"session_id,omitempty"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Generator GeneratorConfig `yaml:"generator"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// ${VAR} and ${VAR:-default} references are expanded before parsing.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data, applying defaults and validating the result.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/chatbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/chatbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chatbot", "config.yaml"), nil
}

// Default returns the out-of-the-box configuration: OpenAI chat completions,
// the offline TF-IDF embedder and an in-memory catalog seeded with the
// built-in services.
func Default() *AppConfig {
	cfg := &AppConfig{
		Generator: GeneratorConfig{Type: "openai"},
		Embedder:  EmbedderConfig{Type: "tfidf"},
		Catalog:   CatalogConfig{Type: "memory", Seed: &SeedConfig{Builtin: true}},
		Retrieval: RetrievalConfig{TopK: 3, ExcerptChars: 100},
		History:   HistoryConfig{SystemPrompt: DefaultSystemPrompt},
		Logging:   LoggingConfig{Env: "local", Level: "warn"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "openai"
	}
	if cfg.Generator.Type == "openai" {
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Generator.OpenAI, "gpt-3.5-turbo", 60)
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "tfidf"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Embedder.OpenAI, "text-embedding-ada-002", 30)
		if cfg.Embedder.OpenAI.MaxRetries == 0 {
			cfg.Embedder.OpenAI.MaxRetries = 2
		}
	}

	if cfg.Catalog.Type == "" {
		cfg.Catalog.Type = "memory"
	}
	switch cfg.Catalog.Type {
	case "memory":
		if cfg.Catalog.Seed == nil {
			cfg.Catalog.Seed = &SeedConfig{Builtin: true}
		}
	case "bolt":
		if cfg.Catalog.Bolt == nil {
			cfg.Catalog.Bolt = &FileConfig{}
		}
		if cfg.Catalog.Bolt.Path == "" {
			cfg.Catalog.Bolt.Path = "data/services.db"
		}
	case "sqlite":
		if cfg.Catalog.SQLite == nil {
			cfg.Catalog.SQLite = &FileConfig{}
		}
		if cfg.Catalog.SQLite.Path == "" {
			cfg.Catalog.SQLite.Path = "data/services.sqlite"
		}
	case "redis":
		if cfg.Catalog.Redis == nil {
			cfg.Catalog.Redis = &RedisConfig{}
		}
		if len(cfg.Catalog.Redis.Addrs) == 0 {
			cfg.Catalog.Redis.Addrs = []string{"localhost:6379"}
		}
		if cfg.Catalog.Redis.KeyPrefix == "" {
			cfg.Catalog.Redis.KeyPrefix = "chatbot:"
		}
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.ExcerptChars == 0 {
		cfg.Retrieval.ExcerptChars = 100
	}
	if cfg.History.SystemPrompt == "" {
		cfg.History.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Logging.Env == "" {
		cfg.Logging.Env = "local"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
}

func applyOpenAIDefaults(c *OpenAIConfig, model string, timeoutSecs int) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = timeoutSecs
	}
}

// Validate checks backend names and numeric limits.
func (c *AppConfig) Validate() error {
	var errs []error
	switch c.Generator.Type {
	case "openai":
	default:
		errs = append(errs, fmt.Errorf("generator.type: unknown type %q", c.Generator.Type))
	}
	switch c.Embedder.Type {
	case "openai", "tfidf":
	default:
		errs = append(errs, fmt.Errorf("embedder.type: unknown type %q", c.Embedder.Type))
	}
	switch c.Catalog.Type {
	case "memory", "bolt", "sqlite", "redis":
	default:
		errs = append(errs, fmt.Errorf("catalog.type: unknown type %q", c.Catalog.Type))
	}
	if c.Retrieval.TopK < 0 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be >= 0, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.ExcerptChars < 0 {
		errs = append(errs, fmt.Errorf("retrieval.excerpt_chars must be >= 0, got %d", c.Retrieval.ExcerptChars))
	}
	if c.History.MaxMessages < 0 {
		errs = append(errs, fmt.Errorf("history.max_messages must be >= 0, got %d", c.History.MaxMessages))
	}
	return errors.Join(errs...)
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
