// Package config loads server configuration from defaults, an optional YAML
// file and DEPOSITGUARD_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   Server         `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Storage  StorageConfig  `mapstructure:"storage"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// PostgresConfig selects the persistent stores. An empty DSN runs every
// store in memory.
type PostgresConfig struct {
	DSN          string        `mapstructure:"dsn"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnMaxIdle  time.Duration `mapstructure:"conn_max_idle"`
}

// RedisConfig enables the shared rule-set cache when URL is set.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// KafkaConfig enables the audit relay when Brokers is non-empty.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	AuditTopic    string        `mapstructure:"audit_topic"`
	RelayInterval time.Duration `mapstructure:"relay_interval"`
	RelayBatch    int           `mapstructure:"relay_batch"`
}

type StorageConfig struct {
	Backend          string        `mapstructure:"backend"`
	S3Bucket         string        `mapstructure:"s3_bucket"`
	S3Region         string        `mapstructure:"s3_region"`
	S3Endpoint       string        `mapstructure:"s3_endpoint"`
	SignedURLTTL     time.Duration `mapstructure:"signed_url_ttl"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
}

// OpenAIConfig enables wording suggestions when APIKey is set.
type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	RPS     float64       `mapstructure:"rps"`
	Burst   int           `mapstructure:"burst"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSigningKey string `mapstructure:"jwt_signing_key"`
	Issuer        string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DevSigningKey is used when no signing key is configured. Load refuses it
// outside development.
const DevSigningKey = "dev-secret-key-change-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	// Unmarshal only sees environment overrides for keys viper already knows.
	for _, key := range []string{
		"postgres.dsn", "redis.url", "storage.s3_bucket", "storage.s3_region",
		"storage.s3_endpoint", "openai.api_key", "openai.base_url",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_idle", 5*time.Minute)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.cache_ttl", 24*time.Hour)
	v.SetDefault("kafka.audit_topic", "depositguard.audit")
	v.SetDefault("kafka.relay_interval", 2*time.Second)
	v.SetDefault("kafka.relay_batch", 100)
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.signed_url_ttl", 15*time.Minute)
	v.SetDefault("storage.failure_threshold", 5)
	v.SetDefault("storage.cooldown", 30*time.Second)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.rps", 2.0)
	v.SetDefault("openai.burst", 4)
	v.SetDefault("openai.timeout", 20*time.Second)
	v.SetDefault("auth.jwt_signing_key", DevSigningKey)
	v.SetDefault("auth.issuer", "depositguard")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration. path may be empty. Nested keys map to
// environment variables with dots replaced by underscores, e.g.
// DEPOSITGUARD_POSTGRES_DSN.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DEPOSITGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(v.GetString("env")); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate(env string) error {
	switch c.Storage.Backend {
	case "memory":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if env != "development" && c.Auth.JWTSigningKey == DevSigningKey {
		return fmt.Errorf("auth.jwt_signing_key must be set outside development")
	}
	if c.Kafka.AuditTopic == "" {
		return fmt.Errorf("kafka.audit_topic must not be empty")
	}
	return nil
}
