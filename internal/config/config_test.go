package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every bound variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "test-secret-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.False(t, cfg.Server.IsProduction())
	assert.Equal(t, "test-secret-key", cfg.JWT.Secret)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours, "should use default expiration of 24 hours")
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration())
	assert.Equal(t, 10, cfg.Password.BcryptCost)
	assert.Equal(t, UploadBackendLocal, cfg.Uploads.Backend)
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 500, cfg.Recommend.ParallelThreshold)
}

func TestLoad_MissingSecret(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("PORT", "8081")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRATION_HOURS", "12")
	t.Setenv("BCRYPT_COST", "11")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("REDIS_TTL", "90s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, 12, cfg.JWT.ExpirationHours)
	assert.Equal(t, 11, cfg.Password.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	content := `
server:
  port: 9000
jwt:
  secret: from-file
  expiration-hours: 48
uploads:
  backend: s3
  s3-bucket: resumes
`
	path := filepath.Join(t.TempDir(), "talenttrek.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 48, cfg.JWT.ExpirationHours)
	assert.Equal(t, UploadBackendS3, cfg.Uploads.Backend)
	assert.Equal(t, "resumes", cfg.Uploads.S3Bucket)

	// Environment wins over the file
	t.Setenv("JWT_SECRET", "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load("/nonexistent/path/talenttrek.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 5000},
			JWT:      JWTConfig{Secret: "s", ExpirationHours: 24},
			Password: PasswordConfig{BcryptCost: 10},
			Uploads:  UploadsConfig{Backend: UploadBackendLocal, Dir: "uploads", MaxBytes: 1024},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "port"},
		{"zero expiration", func(c *Config) { c.JWT.ExpirationHours = 0 }, "at least 1 hour"},
		{"bad cost", func(c *Config) { c.Password.BcryptCost = 4 }, "bcrypt cost"},
		{"unknown backend", func(c *Config) { c.Uploads.Backend = "ftp" }, "unknown upload backend"},
		{"s3 without bucket", func(c *Config) { c.Uploads.Backend = UploadBackendS3 }, "S3_BUCKET"},
		{"zero max bytes", func(c *Config) { c.Uploads.MaxBytes = 0 }, "max bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
