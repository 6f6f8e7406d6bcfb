package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the scenedex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Channels  ChannelsConfig  `yaml:"channels"`
	Fusion    FusionConfig    `yaml:"fusion"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	EmbeddingCacheTTLSec int `yaml:"embedding_cache_ttl_sec"` // 0 = no expiry
}

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Providers   map[string]ProviderConfig   `yaml:"providers"`
	Vectorizers map[string]VectorizerConfig `yaml:"vectorizers"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VectorizerConfig holds vectorizer settings.
type VectorizerConfig struct {
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// ChannelConfig declares one retrieval channel. Kind is "vector" or "text".
// Channel order in the list fixes fusion tie-break priority.
type ChannelConfig struct {
	Key    string  `yaml:"key"`
	Kind   string  `yaml:"kind"`
	Weight float64 `yaml:"weight"`
	Locked bool    `yaml:"locked"`
}

// ChannelsConfig holds the channel set and their default weight distribution.
type ChannelsConfig struct {
	TimeoutMS int             `yaml:"timeout_ms"`
	Defaults  []ChannelConfig `yaml:"defaults"`
}

// FusionConfig holds person-blend settings.
type FusionConfig struct {
	ContentWeight      float64 `yaml:"content_weight"`
	PersonWeight       float64 `yaml:"person_weight"`
	PersonCandidateCap int     `yaml:"person_candidate_cap"` // 0 = 3x top-k
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Channels.TimeoutMS <= 0 {
		c.Channels.TimeoutMS = 2000
	}
	if len(c.Channels.Defaults) == 0 {
		c.Channels.Defaults = []ChannelConfig{
			{Key: "transcript", Kind: "vector", Weight: 0.35},
			{Key: "visual", Kind: "vector", Weight: 0.30},
			{Key: "summary", Kind: "vector", Weight: 0.15},
			{Key: "lexical", Kind: "text", Weight: 0.20},
		}
	}
	if c.Fusion.ContentWeight <= 0 && c.Fusion.PersonWeight <= 0 {
		c.Fusion.ContentWeight = 0.35
		c.Fusion.PersonWeight = 0.65
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	seen := make(map[string]bool, len(c.Channels.Defaults))
	for _, ch := range c.Channels.Defaults {
		if ch.Key == "" {
			return fmt.Errorf("channels.defaults entries require a key")
		}
		if seen[ch.Key] {
			return fmt.Errorf("channels.defaults has duplicate key %q", ch.Key)
		}
		seen[ch.Key] = true
		switch ch.Kind {
		case "vector", "text":
			// ok
		default:
			return fmt.Errorf("channels.defaults.%s.kind must be \"vector\" or \"text\", got %q", ch.Key, ch.Kind)
		}
		if ch.Weight < 0 {
			return fmt.Errorf("channels.defaults.%s.weight must be >= 0", ch.Key)
		}
	}
	if c.Fusion.ContentWeight < 0 || c.Fusion.PersonWeight < 0 {
		return fmt.Errorf("fusion weights must be >= 0")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
