package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	FactCheck FactCheckConfig `yaml:"factcheck" mapstructure:"factcheck"`
	News      NewsConfig      `yaml:"news" mapstructure:"news"`
	GovStat   GovStatConfig   `yaml:"govstat" mapstructure:"govstat"`
	Scholar   ScholarConfig   `yaml:"scholar" mapstructure:"scholar"`
	Extractor ExtractorConfig `yaml:"extractor" mapstructure:"extractor"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	Verdict   VerdictConfig   `yaml:"verdict" mapstructure:"verdict"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings for the reasoning path.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FactCheckConfig holds claim-review directory API settings.
type FactCheckConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NewsConfig holds news search API settings.
type NewsConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GovStatConfig holds government statistics search settings.
type GovStatConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ScholarConfig holds academic search settings.
type ScholarConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ExtractorConfig configures claim extraction.
type ExtractorConfig struct {
	Method    string `yaml:"method" mapstructure:"method"` // rules | llm
	MaxClaims int    `yaml:"max_claims" mapstructure:"max_claims"`
}

// RetrievalConfig configures the evidence fan-out.
type RetrievalConfig struct {
	CategoryTimeoutSecs int     `yaml:"category_timeout_secs" mapstructure:"category_timeout_secs"`
	MaxRetries          int     `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimitPerSec     float64 `yaml:"rate_limit_per_sec" mapstructure:"rate_limit_per_sec"`
	PublisherRegistry   string  `yaml:"publisher_registry" mapstructure:"publisher_registry"`
}

// VerdictConfig configures the verdict generator. A zero ConfidenceThreshold
// defers to the per-tier threshold; setting it applies one value to all tiers.
type VerdictConfig struct {
	RequireConsensus     bool    `yaml:"require_consensus" mapstructure:"require_consensus"`
	CredibilityWeighting bool    `yaml:"credibility_weighting" mapstructure:"credibility_weighting"`
	ConfidenceThreshold  float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	UncertaintyOverlay   bool    `yaml:"uncertainty_overlay" mapstructure:"uncertainty_overlay"`
	ReasoningEnabled     bool    `yaml:"reasoning_enabled" mapstructure:"reasoning_enabled"`
}

// CacheConfig configures the verdict cache.
type CacheConfig struct {
	TTLHours    int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	CleanupMins int `yaml:"cleanup_mins" mapstructure:"cleanup_mins"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentTexts int `yaml:"max_concurrent_texts" mapstructure:"max_concurrent_texts"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CLAIMCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "claimcheck.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_texts", 4)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.temperature", 0.0)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("factcheck.key", "")
	v.SetDefault("factcheck.base_url", "https://factchecktools.googleapis.com/v1alpha1")
	v.SetDefault("news.key", "")
	v.SetDefault("news.base_url", "https://newsapi.org/v2")
	v.SetDefault("govstat.key", "")
	v.SetDefault("govstat.base_url", "https://api.data.gov/stats/v1")
	v.SetDefault("scholar.key", "")
	v.SetDefault("scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("extractor.method", "rules")
	v.SetDefault("extractor.max_claims", 5)
	v.SetDefault("retrieval.category_timeout_secs", 4)
	v.SetDefault("retrieval.max_retries", 2)
	v.SetDefault("retrieval.rate_limit_per_sec", 5.0)
	v.SetDefault("verdict.require_consensus", false)
	v.SetDefault("verdict.credibility_weighting", true)
	v.SetDefault("verdict.confidence_threshold", 0)
	v.SetDefault("verdict.uncertainty_overlay", true)
	v.SetDefault("verdict.reasoning_enabled", false)
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.cleanup_mins", 30)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
