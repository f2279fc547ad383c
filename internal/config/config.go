// Package config loads the service configuration from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultFile is looked up in the working directory when no config path is given.
const DefaultFile = "talenttrek.yaml"

// Upload backends.
const (
	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Password  PasswordConfig  `mapstructure:"password"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Events    EventsConfig    `mapstructure:"events"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate-limit"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Environment  string        `mapstructure:"environment"`
	CORSOrigins  []string      `mapstructure:"cors-origins"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

// IsProduction reports whether development-only routes must be disabled.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// UploadsConfig selects and configures the file storage backend.
type UploadsConfig struct {
	Backend      string `mapstructure:"backend"`
	Dir          string `mapstructure:"dir"`
	PublicPrefix string `mapstructure:"public-prefix"`
	MaxBytes     int64  `mapstructure:"max-bytes"`

	S3Bucket    string `mapstructure:"s3-bucket"`
	S3Region    string `mapstructure:"s3-region"`
	S3Endpoint  string `mapstructure:"s3-endpoint"`
	S3AccessKey string `mapstructure:"s3-access-key"`
	S3SecretKey string `mapstructure:"s3-secret-key"`
	S3PublicURL string `mapstructure:"s3-public-url"`
}

// RedisConfig configures the optional postings cache. An empty URL disables it.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

// EventsConfig configures the optional AMQP publisher. An empty URL disables it.
type EventsConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// LogConfig configures zap.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// RateLimitConfig configures per-client token buckets. Rates are requests per minute.
type RateLimitConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	General     int  `mapstructure:"general"`
	Auth        int  `mapstructure:"auth"`
	Uploads     int  `mapstructure:"uploads"`
	BurstFactor int  `mapstructure:"burst-factor"`
}

// RecommendConfig tunes the recommendation flow.
type RecommendConfig struct {
	ParallelThreshold int `mapstructure:"parallel-threshold"`
	Workers           int `mapstructure:"workers"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":           "PORT",
	"server.environment":    "APP_ENV",
	"server.cors-origins":   "CORS_ORIGINS",
	"database.url":          "DATABASE_URL",
	"jwt.secret":            "JWT_SECRET",
	"jwt.expiration-hours":  "JWT_EXPIRATION_HOURS",
	"password.bcrypt-cost":  "BCRYPT_COST",
	"password.pepper":       "PASSWORD_PEPPER",
	"uploads.backend":       "UPLOAD_BACKEND",
	"uploads.dir":           "UPLOAD_DIR",
	"uploads.max-bytes":     "UPLOAD_MAX_BYTES",
	"uploads.s3-bucket":     "S3_BUCKET",
	"uploads.s3-region":     "S3_REGION",
	"uploads.s3-endpoint":   "S3_ENDPOINT",
	"uploads.s3-access-key": "S3_ACCESS_KEY_ID",
	"uploads.s3-secret-key": "S3_SECRET_ACCESS_KEY",
	"uploads.s3-public-url": "S3_PUBLIC_URL",
	"redis.url":             "REDIS_URL",
	"redis.ttl":             "REDIS_TTL",
	"events.url":            "RABBITMQ_URL",
	"events.exchange":       "RABBITMQ_EXCHANGE",
	"log.json":              "LOG_JSON",
	"log.debug":             "LOG_DEBUG",
	"rate-limit.enabled":    "RATE_LIMIT_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors-origins", []string{"http://localhost:5173"})
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)
	v.SetDefault("jwt.expiration-hours", 24)
	v.SetDefault("password.bcrypt-cost", 10)
	v.SetDefault("uploads.backend", UploadBackendLocal)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.public-prefix", "/uploads")
	v.SetDefault("uploads.max-bytes", 5<<20)
	v.SetDefault("uploads.s3-region", "us-east-1")
	v.SetDefault("redis.ttl", time.Minute)
	v.SetDefault("events.exchange", "talenttrek.events")
	v.SetDefault("rate-limit.enabled", true)
	v.SetDefault("rate-limit.general", 100)
	v.SetDefault("rate-limit.auth", 10)
	v.SetDefault("rate-limit.uploads", 20)
	v.SetDefault("rate-limit.burst-factor", 2)
	v.SetDefault("recommend.parallel-threshold", 500)
}

// Load reads configuration from path, or from DefaultFile when path is empty, and
// applies environment overrides. A missing default file is not an error; a missing
// explicit file is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if _, err := os.Stat(DefaultFile); err == nil {
		v.SetConfigFile(DefaultFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", DefaultFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: server port out of range: %d", c.Server.Port)
	}
	if err := c.JWT.normalize(); err != nil {
		return err
	}
	if err := c.Password.normalize(); err != nil {
		return err
	}

	switch c.Uploads.Backend {
	case UploadBackendLocal:
		if c.Uploads.Dir == "" {
			return errors.New("config error: uploads dir is required for the local backend")
		}
	case UploadBackendS3:
		if c.Uploads.S3Bucket == "" {
			return errors.New("config error: S3_BUCKET is required for the s3 backend")
		}
	default:
		return fmt.Errorf("config error: unknown upload backend %q", c.Uploads.Backend)
	}

	if c.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("config error: upload max bytes must be positive, got %d", c.Uploads.MaxBytes)
	}
	return nil
}
