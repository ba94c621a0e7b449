// Package config loads server configuration from defaults, an optional YAML
// file, a .env file and NAJDENO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Uploads  UploadsConfig  `mapstructure:"uploads"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the store backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "mongo".
	Driver string `mapstructure:"driver"`

	// SQLite settings.
	Path string `mapstructure:"path"`

	// MongoDB settings.
	MongoURI       string        `mapstructure:"mongo_uri"`
	MongoDatabase  string        `mapstructure:"mongo_database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// AuthConfig holds token signing and admin bootstrap settings.
type AuthConfig struct {
	// JWTSecret signs tokens. When empty with the sqlite driver a secret is
	// generated once and kept in the database.
	JWTSecret  string `mapstructure:"jwt_secret"`
	AdminEmail string `mapstructure:"admin_email"`
	AdminName  string `mapstructure:"admin_name"`
}

// UploadsConfig selects where item photos are stored.
type UploadsConfig struct {
	// Backend is "local" or "s3".
	Backend    string         `mapstructure:"backend"`
	Dir        string         `mapstructure:"dir"`
	PublicPath string         `mapstructure:"public_path"`
	MaxSize    int64          `mapstructure:"max_size"`
	S3         S3UploadConfig `mapstructure:"s3"`
}

// S3UploadConfig holds settings for the S3-compatible upload backend.
type S3UploadConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicURL       string `mapstructure:"public_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	Prefix          string `mapstructure:"prefix"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration. configPath may be empty, in which case
// config.yaml is searched for in the working directory and /etc/najdeno.
// Variables from a .env file in the working directory are applied first but
// never override the real environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NAJDENO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/najdeno")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "najdeno.db")
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo_database", "lostfound")
	v.SetDefault("database.connect_timeout", 10*time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_name", "Admin")

	v.SetDefault("uploads.backend", "local")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.public_path", "/uploads")
	v.SetDefault("uploads.max_size", 5<<20)
	v.SetDefault("uploads.s3.endpoint", "")
	v.SetDefault("uploads.s3.region", "us-east-1")
	v.SetDefault("uploads.s3.bucket", "")
	v.SetDefault("uploads.s3.access_key_id", "")
	v.SetDefault("uploads.s3.secret_access_key", "")
	v.SetDefault("uploads.s3.public_url", "")
	v.SetDefault("uploads.s3.use_path_style", false)
	v.SetDefault("uploads.s3.prefix", "items")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite driver")
		}
	case "mongo":
		if c.Database.MongoURI == "" {
			return errors.New("database.mongo_uri is required for mongo driver")
		}
		if c.Database.MongoDatabase == "" {
			return errors.New("database.mongo_database is required for mongo driver")
		}
		if c.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is required for mongo driver")
		}
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'mongo', got %q", c.Database.Driver)
	}

	switch c.Uploads.Backend {
	case "local":
		if c.Uploads.Dir == "" {
			return errors.New("uploads.dir is required for local backend")
		}
		if !strings.HasPrefix(c.Uploads.PublicPath, "/") || c.Uploads.PublicPath == "/" {
			return errors.New("uploads.public_path must be an absolute path below /")
		}
	case "s3":
		if c.Uploads.S3.Bucket == "" {
			return errors.New("uploads.s3.bucket is required for s3 backend")
		}
	default:
		return fmt.Errorf("uploads.backend must be 'local' or 's3', got %q", c.Uploads.Backend)
	}
	if c.Uploads.MaxSize <= 0 {
		return errors.New("uploads.max_size must be positive")
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", c.Logging.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return nil
}
