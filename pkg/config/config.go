// Package config loads the search server configuration from a YAML file
// with SS_* environment-variable overrides. Every section has a usable
// default, so an empty path yields a runnable in-process server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Engine    EngineConfig    `yaml:"engine"`
	Search    SearchConfig    `yaml:"search"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// EngineConfig configures the search engine itself. StopWords is
// space-separated text.
type EngineConfig struct {
	StopWords         string `yaml:"stopWords"`
	MaxResults        int    `yaml:"maxResults"`
	AccumulatorShards int    `yaml:"accumulatorShards"`
	DefaultMode       string `yaml:"defaultMode"`
}

// SearchConfig controls the HTTP search surface.
type SearchConfig struct {
	PageSize        int `yaml:"pageSize"`
	MaxBatchQueries int `yaml:"maxBatchQueries"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentIngest  string `yaml:"documentIngest"`
	AnalyticsEvents string `yaml:"analyticsEvents"`
}

// RedisConfig holds Redis connection and result-cache parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// AnalyticsConfig controls request statistics. WindowSize is the number of
// most recent requests kept by the request queue.
type AnalyticsConfig struct {
	WindowSize       int           `yaml:"windowSize"`
	BufferSize       int           `yaml:"bufferSize"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used for any value a file leaves out.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Engine: EngineConfig{
			MaxResults:        5,
			AccumulatorShards: 4096,
			DefaultMode:       "sequential",
		},
		Search: SearchConfig{
			PageSize:        5,
			MaxBatchQueries: 100,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "searchserver",
			User:            "searchserver",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "searchserver-group",
			Topics: KafkaTopics{
				DocumentIngest:  "document-ingest",
				AnalyticsEvents: "analytics-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Analytics: AnalyticsConfig{
			WindowSize:       1440,
			BufferSize:       10000,
			SnapshotInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Engine.MaxResults < 1 {
		return fmt.Errorf("engine.maxResults must be positive, got %d", c.Engine.MaxResults)
	}
	if c.Engine.AccumulatorShards < 1 {
		return fmt.Errorf("engine.accumulatorShards must be positive, got %d", c.Engine.AccumulatorShards)
	}
	switch strings.ToLower(c.Engine.DefaultMode) {
	case "", "seq", "sequential", "par", "parallel":
	default:
		return fmt.Errorf("engine.defaultMode %q is not sequential or parallel", c.Engine.DefaultMode)
	}
	if c.Search.PageSize < 1 {
		return fmt.Errorf("search.pageSize must be positive, got %d", c.Search.PageSize)
	}
	if c.Analytics.WindowSize < 1 {
		return fmt.Errorf("analytics.windowSize must be positive, got %d", c.Analytics.WindowSize)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka is enabled but no brokers are configured")
	}
	return nil
}

// applyEnvOverrides reads SS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	setInt("SS_SERVER_PORT", &cfg.Server.Port)
	setString("SS_ENGINE_STOP_WORDS", &cfg.Engine.StopWords)
	setInt("SS_ENGINE_MAX_RESULTS", &cfg.Engine.MaxResults)
	setInt("SS_ENGINE_ACCUMULATOR_SHARDS", &cfg.Engine.AccumulatorShards)
	setString("SS_ENGINE_DEFAULT_MODE", &cfg.Engine.DefaultMode)
	setInt("SS_SEARCH_PAGE_SIZE", &cfg.Search.PageSize)
	setBool("SS_POSTGRES_ENABLED", &cfg.Postgres.Enabled)
	setString("SS_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("SS_POSTGRES_PORT", &cfg.Postgres.Port)
	setString("SS_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setString("SS_POSTGRES_USER", &cfg.Postgres.User)
	setString("SS_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("SS_POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	setBool("SS_KAFKA_ENABLED", &cfg.Kafka.Enabled)
	if v := os.Getenv("SS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setBool("SS_REDIS_ENABLED", &cfg.Redis.Enabled)
	setString("SS_REDIS_ADDR", &cfg.Redis.Addr)
	setString("SS_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("SS_ANALYTICS_WINDOW_SIZE", &cfg.Analytics.WindowSize)
	setString("SS_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("SS_LOGGING_FORMAT", &cfg.Logging.Format)
	setBool("SS_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setInt("SS_METRICS_PORT", &cfg.Metrics.Port)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
