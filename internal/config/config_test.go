package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "local", cfg.Uploads.Backend)
	assert.Equal(t, "/uploads", cfg.Uploads.PublicPath)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "najdeno.yaml")
	err := os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  shutdown_timeout: 3s
database:
  driver: mongo
  mongo_uri: mongodb://db:27017
uploads:
  backend: s3
  s3:
    bucket: photos
    use_path_style: true
logging:
  level: debug
`), 0o644)
	require.NoError(t, err)

	t.Setenv("NAJDENO_AUTH_JWT_SECRET", "from-env")
	t.Setenv("NAJDENO_SERVER_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.MongoURI)
	assert.Equal(t, "lostfound", cfg.Database.MongoDatabase)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "photos", cfg.Uploads.S3.Bucket)
	assert.True(t, cfg.Uploads.S3.UsePathStyle)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"mongo without secret", func(c *Config) { c.Database.Driver = "mongo" }},
		{"unknown backend", func(c *Config) { c.Uploads.Backend = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Uploads.Backend = "s3" }},
		{"root public path", func(c *Config) { c.Uploads.PublicPath = "/" }},
		{"zero max size", func(c *Config) { c.Uploads.MaxSize = 0 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
