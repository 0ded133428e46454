package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 4000, cfg.HTTP.Port)
	require.Equal(t, int64(5*1024*1024), cfg.HTTP.MaxUploadBytes)
	require.Equal(t, 7*24*time.Hour, cfg.Retention.Timestamp)
	require.Equal(t, 15*time.Minute, cfg.Retention.EmailLog)
	require.Equal(t, 72*time.Hour, cfg.Retention.RequestWindow)
	require.Equal(t, "queue", cfg.Jobs.Mode)
	require.Equal(t, "0 0 0 * * *", cfg.Jobs.CleanupSpec)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WORKFORCE_HTTP_PORT", "9090")
	t.Setenv("WORKFORCE_JOBS_MODE", "inline")
	t.Setenv("WORKFORCE_RETENTION_TIMESTAMP", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.HTTP.Port)
	require.Equal(t, "inline", cfg.Jobs.Mode)
	require.Equal(t, 24*time.Hour, cfg.Retention.Timestamp)
}

func TestDecodeRejectsBadValues(t *testing.T) {
	t.Run("unknown jobs mode", func(t *testing.T) {
		v := viper.New()
		setDefaults(v)
		v.Set("jobs.mode", "cron")

		_, err := decode(v)
		require.ErrorContains(t, err, "jobs.mode")
	})

	t.Run("production without jwt secret", func(t *testing.T) {
		v := viper.New()
		setDefaults(v)
		v.Set("environment", "production")

		_, err := decode(v)
		require.ErrorContains(t, err, "jwtsecret")
	})

	t.Run("cors origins split on commas", func(t *testing.T) {
		v := viper.New()
		setDefaults(v)
		v.Set("allowcorsorigins", "http://a.test,http://b.test")

		cfg, err := decode(v)
		require.NoError(t, err)
		require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowCORSOrigins)
	})
}
