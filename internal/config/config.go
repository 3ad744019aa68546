package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all process-wide settings. It is loaded once at startup and
// treated as read-only afterwards; per-run knobs (max hops) may be overridden
// per request but never mutated here.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Index     IndexConfig     `mapstructure:"index"`
	QA        QAConfig        `mapstructure:"qa"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// LLMConfig configures the reasoning model client.
type LLMConfig struct {
	Provider   string        `mapstructure:"provider"`
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	MaxTokens  int           `mapstructure:"max_tokens"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// EmbeddingConfig configures the embedding client used by the vector store.
type EmbeddingConfig struct {
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	CacheSize int    `mapstructure:"cache_size"`
}

// IndexConfig configures the persistent vector index.
type IndexConfig struct {
	PersistPath string `mapstructure:"persist_path"`
	Collection  string `mapstructure:"collection"`
}

// QAConfig configures the multi-hop answering loop.
type QAConfig struct {
	MaxHops          int           `mapstructure:"max_hops"`
	RetrieveK        int           `mapstructure:"retrieve_k"`
	RankTopK         int           `mapstructure:"rank_top_k"`
	ContextBudget    int           `mapstructure:"context_budget"`
	StepTimeout      time.Duration `mapstructure:"step_timeout"`
	SynthesisTimeout time.Duration `mapstructure:"synthesis_timeout"`
	ExperimentDir    string        `mapstructure:"experiment_dir"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "claude-3-7-sonnet-20250219")
	v.SetDefault("llm.max_tokens", 1500)
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.max_retries", 3)

	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.cache_size", 10000)

	v.SetDefault("index.persist_path", "data/cached")
	v.SetDefault("index.collection", "hotpot")

	v.SetDefault("qa.max_hops", 3)
	v.SetDefault("qa.retrieve_k", 10)
	v.SetDefault("qa.rank_top_k", 5)
	v.SetDefault("qa.context_budget", 500000)
	v.SetDefault("qa.step_timeout", 120*time.Second)
	v.SetDefault("qa.synthesis_timeout", 180*time.Second)
	v.SetDefault("qa.experiment_dir", "data/experiments")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from an optional config file plus HOPQA_* env
// variables. A .env file in the working directory is applied first so local
// setups match production env wiring.
func Load(configFile string) (*Config, error) {
	// Ignore a missing .env; it is a development convenience only.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HOPQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("hopqa")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.hopqa")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Provider keys commonly arrive through bare env vars rather than the
	// HOPQA_ namespace; accept both.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v.GetString("llm.api_key")
	}
	applyEnvFallbacks(&cfg)

	return &cfg, nil
}

// Validate reports fatal configuration errors before any run starts.
func (c *Config) Validate() error {
	if c.QA.MaxHops < 1 {
		return fmt.Errorf("qa.max_hops must be >= 1, got %d", c.QA.MaxHops)
	}
	if c.QA.RetrieveK < 1 {
		return fmt.Errorf("qa.retrieve_k must be >= 1, got %d", c.QA.RetrieveK)
	}
	if c.QA.RankTopK < 1 {
		return fmt.Errorf("qa.rank_top_k must be >= 1, got %d", c.QA.RankTopK)
	}
	if c.QA.ContextBudget < 1 {
		return fmt.Errorf("qa.context_budget must be positive, got %d", c.QA.ContextBudget)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (set HOPQA_LLM_API_KEY or ANTHROPIC_API_KEY)")
	}
	return nil
}
