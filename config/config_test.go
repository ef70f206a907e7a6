package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "poems.db", cfg.Database.DSN)
	assert.Equal(t, 9, cfg.Schedule.Hour)
	assert.Equal(t, "GMT", cfg.Schedule.Timezone)
	assert.True(t, cfg.Schedule.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.False(t, cfg.Auth.Enabled())
	assert.Equal(t, ":5000", cfg.Server.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TWITTER_API_KEY", "key")
	t.Setenv("TWITTER_ACCESS_SECRET", "secret")
	t.Setenv("SCHEDULE_HOUR", "21")
	t.Setenv("SCHEDULE_TIMEZONE", "Asia/Tehran")
	t.Setenv("SCHEDULE_ENABLED", "false")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Twitter.APIKey)
	assert.Equal(t, "secret", cfg.Twitter.AccessSecret)
	assert.Equal(t, 21, cfg.Schedule.Hour)
	assert.Equal(t, "Asia/Tehran", cfg.Schedule.Timezone)
	assert.False(t, cfg.Schedule.Enabled)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "schedule:\n  hour: 7\n  minute: 30\ndatabase:\n  dsn: other.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Schedule.Hour)
	assert.Equal(t, 30, cfg.Schedule.Minute)
	assert.Equal(t, "other.db", cfg.Database.DSN)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	env := "TWITTER_BEARER_TOKEN=from-dotenv\nTWITTER_API_SECRET=dotenv-secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	// 显式环境变量优先于 .env
	t.Setenv("TWITTER_API_SECRET", "from-env")
	// 避免 .env 导入的键泄漏到其他测试
	t.Setenv("TWITTER_BEARER_TOKEN", "")
	require.NoError(t, os.Unsetenv("TWITTER_BEARER_TOKEN"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Twitter.BearerToken)
	assert.Equal(t, "from-env", cfg.Twitter.APISecret)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite"},
			Schedule: ScheduleConfig{Hour: 9, Timezone: "GMT"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"postgres", func(c *Config) { c.Database.Driver = "postgres" }, false},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"hour too big", func(c *Config) { c.Schedule.Hour = 24 }, true},
		{"negative minute", func(c *Config) { c.Schedule.Minute = -1 }, true},
		{"unknown zone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, true},
		{"auth without ttl", func(c *Config) { c.Auth.JWTSecret = "s" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTwitterConfig_HasUserContext(t *testing.T) {
	assert.False(t, TwitterConfig{BearerToken: "b"}.HasUserContext())
	assert.True(t, TwitterConfig{APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "a"}.HasUserContext())
}
