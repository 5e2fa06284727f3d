package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ACCESS_SECRET", "REFRESH_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
		"BCRYPT_COST", "JOB_SCHEDULE", "KAFKA_BROKERS", "SERVER_PORT",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "maumeum", cfg.ServiceName)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "0 0 * * *", cfg.JobSchedule)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.RevokeOnLogout)

	assert.True(t, cfg.UsingFallbackSecrets())
	assert.Equal(t, FallbackAccessSecret, cfg.AccessSecret)
	assert.Equal(t, FallbackRefreshSecret, cfg.RefreshSecret)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ACCESS_SECRET", "a")
	t.Setenv("REFRESH_SECRET", "r")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SERVER_PORT", "9000")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.False(t, cfg.UsingFallbackSecrets())
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, ":9000", cfg.ListenAddr())
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ACCESS_SECRET=from-file\nBCRYPT_COST=12\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("ACCESS_SECRET")
		_ = os.Unsetenv("BCRYPT_COST")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AccessSecret)
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestValidate(t *testing.T) {
	valid := Config{
		AccessSecret:  "a",
		RefreshSecret: "r",
		AccessTTL:     time.Hour,
		RefreshTTL:    time.Hour,
		BcryptCost:    10,
		JobSchedule:   "0 0 * * *",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTTL = 0 }},
		{name: "negative refresh ttl", mutate: func(c *Config) { c.RefreshTTL = -time.Second }},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.BcryptCost = 1 }},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.BcryptCost = 40 }},
		{name: "same secrets", mutate: func(c *Config) { c.RefreshSecret = c.AccessSecret }},
		{name: "empty schedule", mutate: func(c *Config) { c.JobSchedule = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, Config{JobTimezone: "Local"}.Location())
	assert.Equal(t, time.Local, Config{JobTimezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", Config{JobTimezone: "UTC"}.Location().String())
}
