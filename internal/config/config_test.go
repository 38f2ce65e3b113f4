package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: "9000"
  mode: debug
database:
  driver: postgres
  host: db
  dbname: peymonak
jwt:
  secret: dev-secret
  access_expire_hours: 2
storage:
  type: minio
  minio_bucket: ads
support:
  contacts:
    - email: help@example.com
      telegram_link: https://t.me/peymonak
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "configs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "peymonak", cfg.Database.DBName)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessExpire)
	assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshExpire)
	assert.Equal(t, "log", cfg.SMS.Provider)
	assert.Equal(t, 60, cfg.Verification.ResendCooldownSeconds)
	assert.Equal(t, "ads", cfg.Storage.MinioBucket)
	require.Len(t, cfg.Support.Contacts, 1)
	assert.Equal(t, "https://t.me/peymonak", cfg.Support.Contacts[0].TelegramLink)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("PEYMONAK_VERIFICATION_RESEND_COOLDOWN_SECONDS", "15")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 15, cfg.Verification.ResendCooldownSeconds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Mode: "debug"},
		Database: DatabaseConfig{Driver: "mysql"},
		JWT:      JWTConfig{Secret: "short", AccessExpire: time.Hour, RefreshExpire: time.Hour},
		SMS:      SMSConfig{Provider: "log"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"short secret in release", func(c *Config) {
			c.Server.Mode = "release"
			c.SMS = SMSConfig{Provider: "kavenegar", APIKey: "key"}
		}},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }},
		{"kavenegar without key", func(c *Config) { c.SMS.Provider = "kavenegar" }},
		{"log sms in release", func(c *Config) {
			c.Server.Mode = "release"
			c.JWT.Secret = "0123456789abcdef0123456789abcdef"
		}},
		{"unknown sms provider", func(c *Config) { c.SMS.Provider = "pigeon" }},
		{"zero lifetime", func(c *Config) { c.JWT.RefreshExpire = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
