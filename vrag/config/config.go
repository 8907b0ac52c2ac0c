package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/vragkit/vrag"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config stores all configuration of the pipeline helpers.
// It is a plain value so it can be serialized and handed to worker processes;
// the call wrappers inject it into every embedding and LLM request.
type Config struct {
	WorkingDir string          `mapstructure:"working_dir" json:"working_dir" yaml:"working_dir"`
	Embedding  EmbeddingConfig `mapstructure:"embedding" json:"embedding" yaml:"embedding"`
	LLM        LLMConfig       `mapstructure:"llm" json:"llm" yaml:"llm"`
	Tokenizer  TokenizerConfig `mapstructure:"tokenizer" json:"tokenizer" yaml:"tokenizer"`
	Device     DeviceConfig    `mapstructure:"device" json:"device" yaml:"device"`
	Cache      CacheConfig     `mapstructure:"cache" json:"cache" yaml:"cache"`
	Tracing    TracingConfig   `mapstructure:"tracing" json:"tracing" yaml:"tracing"`
}

// EmbeddingConfig stores embedding model settings.
type EmbeddingConfig struct {
	ModelName    string `mapstructure:"model_name" json:"model_name" yaml:"model_name"`
	Dims         int    `mapstructure:"dims" json:"dims" yaml:"dims"`                               // Expected embedding width
	MaxTokenSize int    `mapstructure:"max_token_size" json:"max_token_size" yaml:"max_token_size"` // Per-text token cap
	BatchSize    int    `mapstructure:"batch_size" json:"batch_size" yaml:"batch_size"`             // Texts per embedding call
	MaxAsync     int    `mapstructure:"max_async" json:"max_async" yaml:"max_async"`                // Max concurrent embedding calls
}

// LLMConfig stores language model call settings.
type LLMConfig struct {
	ModelName            string        `mapstructure:"model_name" json:"model_name" yaml:"model_name"`
	MaxTokenSize         int           `mapstructure:"max_token_size" json:"max_token_size" yaml:"max_token_size"`
	MaxAsync             int           `mapstructure:"max_async" json:"max_async" yaml:"max_async"` // Max concurrent LLM calls
	CacheEnabled         bool          `mapstructure:"cache_enabled" json:"cache_enabled" yaml:"cache_enabled"`
	RetryAttempts        int           `mapstructure:"retry_attempts" json:"retry_attempts" yaml:"retry_attempts"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval" json:"retry_initial_interval" yaml:"retry_initial_interval"`
}

// TokenizerConfig selects the tokenizer backend.
type TokenizerConfig struct {
	Backend   string `mapstructure:"backend" json:"backend" yaml:"backend"`          // "tiktoken", "huggingface"
	ModelName string `mapstructure:"model_name" json:"model_name" yaml:"model_name"` // tiktoken model name
	Path      string `mapstructure:"path" json:"path" yaml:"path"`                   // tokenizer.json for huggingface
}

// DeviceConfig overrides compute device selection.
type DeviceConfig struct {
	Force string `mapstructure:"force" json:"force" yaml:"force"` // "", "cuda", "mps", "cpu"
}

// CacheConfig stores settings for the LLM response cache (hashing kv).
type CacheConfig struct {
	Backend   string        `mapstructure:"backend" json:"backend" yaml:"backend"` // "memory", "json", "libsql"
	Capacity  int           `mapstructure:"capacity" json:"capacity" yaml:"capacity"`
	TTL       time.Duration `mapstructure:"ttl" json:"ttl" yaml:"ttl"`
	Namespace string        `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
}

// TracingConfig toggles span logging around wrapped calls.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
}

// LoadConfig reads configuration from file or environment variables.
// An explicit configPath must exist; without one a missing file means defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := newViper(configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// Watch loads the config at configPath and calls onChange with a freshly
// decoded Config every time the file is rewritten.
func Watch(configPath string, onChange func(*Config, error)) (*Config, error) {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()

	return cfg, nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.AutomaticEnv()
	// Replace dots with underscores in env var names e.g. llm.max_async becomes LLM_MAX_ASYNC
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("working_dir", internal.DefaultWorkingDir)

	// Embedding defaults
	v.SetDefault("embedding.model_name", "text-embedding-3-small")
	v.SetDefault("embedding.dims", 1536)
	v.SetDefault("embedding.max_token_size", 8192)
	v.SetDefault("embedding.batch_size", 32)
	v.SetDefault("embedding.max_async", 16)

	// LLM defaults
	v.SetDefault("llm.model_name", "gpt-4o-mini")
	v.SetDefault("llm.max_token_size", 32768)
	v.SetDefault("llm.max_async", 16)
	v.SetDefault("llm.cache_enabled", true)
	v.SetDefault("llm.retry_attempts", 3)
	v.SetDefault("llm.retry_initial_interval", "500ms")

	v.SetDefault("tokenizer.backend", "tiktoken")
	v.SetDefault("tokenizer.model_name", internal.DefaultTokenizerModel)
	v.SetDefault("tokenizer.path", "")

	v.SetDefault("device.force", "")

	// Cache defaults
	v.SetDefault("cache.backend", internal.DefaultCacheBackend)
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.namespace", internal.DefaultCacheNamespace)

	v.SetDefault("tracing.enabled", true)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}
