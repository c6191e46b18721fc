package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig points at the three catalog tables
type CatalogConfig struct {
	ProductFile string `mapstructure:"product_file"`
	FeatureFile string `mapstructure:"feature_file"`
	MappingFile string `mapstructure:"mapping_file"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider          string        `mapstructure:"provider"` // "ollama", "openai" or "none"
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	BatchSize         int           `mapstructure:"batch_size"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// MatchingConfig holds ranking configuration
type MatchingConfig struct {
	TopN      int    `mapstructure:"top_n"`
	Workers   int    `mapstructure:"workers"`
	RulesFile string `mapstructure:"rules_file"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rak-recommender/")

	// RECOMMENDER_EMBEDDING_BASE_URL -> embedding.base_url
	v.SetEnvPrefix("RECOMMENDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding
// variables that are already set
func loadEnvFile() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error loading .env file: %w", err)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Catalog defaults
	v.SetDefault("catalog.product_file", "data/product_table.csv")
	v.SetDefault("catalog.feature_file", "data/feature_table.csv")
	v.SetDefault("catalog.mapping_file", "data/product_feature_map.csv")

	// Embedding defaults
	v.SetDefault("embedding.provider", "ollama")
	v.SetDefault("embedding.base_url", "http://localhost:11434")
	v.SetDefault("embedding.model", "all-minilm")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.timeout", "30s")
	v.SetDefault("embedding.batch_size", 32)
	v.SetDefault("embedding.max_retries", 3)
	v.SetDefault("embedding.requests_per_second", 0)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Matching defaults
	v.SetDefault("matching.top_n", 3)
	v.SetDefault("matching.workers", 4)
	v.SetDefault("matching.rules_file", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Embedding.Provider {
	case "ollama", "openai", "none":
	default:
		return fmt.Errorf("embedding provider must be 'ollama', 'openai' or 'none', got: %s", config.Embedding.Provider)
	}

	if config.Embedding.Provider != "none" && config.Embedding.Model == "" {
		return fmt.Errorf("embedding model is required (set RECOMMENDER_EMBEDDING_MODEL)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Matching.TopN < 0 {
		return fmt.Errorf("matching top_n must be non-negative, got: %d", config.Matching.TopN)
	}

	if config.Catalog.ProductFile == "" || config.Catalog.FeatureFile == "" || config.Catalog.MappingFile == "" {
		return fmt.Errorf("catalog product, feature and mapping files are required")
	}

	return nil
}
