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

// Config holds the opendata API configuration.
type Config struct {
	HTTP           HTTPConfig           `yaml:"http"`
	Mongo          MongoConfig          `yaml:"mongo"`
	Elasticsearch  ElasticsearchConfig  `yaml:"elasticsearch"`
	Milvus         MilvusConfig         `yaml:"milvus"`
	Redis          RedisConfig          `yaml:"redis"`
	Embedding      EmbeddingConfig      `yaml:"embedding"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Snapshot       SnapshotConfig       `yaml:"snapshot"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	Auth           AuthConfig           `yaml:"auth"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds admin API authentication settings.
type AuthConfig struct {
	AdminAPIKeys []string `yaml:"admin_api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// MongoConfig holds the document store connection.
type MongoConfig struct {
	URI              string `yaml:"uri"`
	Database         string `yaml:"database"`
	MaxPoolSize      uint64 `yaml:"max_pool_size"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// ElasticsearchConfig holds the full-text search connection.
type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Index     string   `yaml:"index"`
}

// MilvusConfig holds the vector index connection.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"db_name"`
	Collection string `yaml:"collection"`
	Dimensions int    `yaml:"dimensions"`
}

// RedisConfig holds the shared rate-limit store. Empty Addrs disables it.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return len(r.Addrs) > 0 }

// EmbeddingConfig holds the OpenAI-compatible embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	TimeoutSec int    `yaml:"timeout_sec"`
	BatchSize  int    `yaml:"batch_size"`
	// Redis-backed vector cache; 0 disables it.
	CacheTTLHours int `yaml:"cache_ttl_hours"`
}

// RateLimitConfig holds the public route quota.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"`
	WindowSec int `yaml:"window_sec"`
}

// SnapshotConfig holds ranked snapshot settings.
type SnapshotConfig struct {
	Size               int `yaml:"size"`
	RebuildIntervalSec int `yaml:"rebuild_interval_sec"` // 0 = disabled
	MaxPageSize        int `yaml:"max_page_size"`
}

// RecommendationConfig holds similarity lookup settings.
type RecommendationConfig struct {
	TopK            int     `yaml:"top_k"`
	Threshold       float64 `yaml:"threshold"`
	CacheTTLHours   int     `yaml:"cache_ttl_hours"`
	DetailTimeoutMs int     `yaml:"detail_timeout_ms"`
	MaxBatch        int     `yaml:"max_batch"`
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

	// Unset list entries expand to "".
	cfg.Redis.Addrs = compact(cfg.Redis.Addrs)
	cfg.Elasticsearch.Addresses = compact(cfg.Elasticsearch.Addresses)
	cfg.Auth.AdminAPIKeys = compact(cfg.Auth.AdminAPIKeys)

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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "opendata"
	}
	if c.Mongo.ReadinessTimeout <= 0 {
		c.Mongo.ReadinessTimeout = 10
	}
	if c.Elasticsearch.Index == "" {
		c.Elasticsearch.Index = "opendata_titles"
	}
	if c.Milvus.Collection == "" {
		c.Milvus.Collection = "opendata_embeddings"
	}
	if c.Milvus.Dimensions <= 0 {
		c.Milvus.Dimensions = 1536
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = c.Milvus.Dimensions
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 60
	}
	if c.RateLimit.WindowSec == 0 {
		c.RateLimit.WindowSec = 60
	}
	if c.Snapshot.Size <= 0 {
		c.Snapshot.Size = 1000
	}
	if c.Snapshot.MaxPageSize <= 0 {
		c.Snapshot.MaxPageSize = 100
	}
	if c.Recommendation.TopK <= 0 {
		c.Recommendation.TopK = 4
	}
	if c.Recommendation.Threshold <= 0 {
		c.Recommendation.Threshold = 0.5
	}
	if c.Recommendation.CacheTTLHours <= 0 {
		c.Recommendation.CacheTTLHours = 7 * 24
	}
	if c.Recommendation.DetailTimeoutMs <= 0 {
		c.Recommendation.DetailTimeoutMs = 5000
	}
	if c.Recommendation.MaxBatch <= 0 {
		c.Recommendation.MaxBatch = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if c.RateLimit.WindowSec < 0 {
		return fmt.Errorf("rate_limit.window_sec must be positive, got %d", c.RateLimit.WindowSec)
	}
	if c.Snapshot.RebuildIntervalSec < 0 {
		return fmt.Errorf("snapshot.rebuild_interval_sec must not be negative, got %d", c.Snapshot.RebuildIntervalSec)
	}
	if c.Recommendation.Threshold > 1 {
		return fmt.Errorf("recommendation.threshold must be at most 1, got %g", c.Recommendation.Threshold)
	}
	if c.Embedding.Dimensions != c.Milvus.Dimensions {
		return fmt.Errorf("embedding.dimensions (%d) must match milvus.dimensions (%d)",
			c.Embedding.Dimensions, c.Milvus.Dimensions)
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

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
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
