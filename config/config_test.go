package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFailsWithoutCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN is required")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY is required")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, 100.0, cfg.Penalty.UnitRupees)
	assert.Equal(t, 18.0, cfg.Penalty.DailyRatePercent)
	assert.Equal(t, 2, cfg.Penalty.EscalationThreshold)
	assert.Equal(t, 8, cfg.Scheduler.TributeHour)
	assert.Equal(t, int64(50*1024*1024), cfg.Video.MaxFileSize)
	assert.Equal(t, []string{"ayaka"}, cfg.Telegram.BotNames)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Timezone)
	require.NotNil(t, cfg.App.Location)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("BOT_NAMES", "ayaka, tutor ,")
	t.Setenv("PENALTY_DAILY_RATE_PERCENT", "10")
	t.Setenv("MEMORY_BACKEND", "redis")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("LEADER_TELEGRAM_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"ayaka", "tutor"}, cfg.Telegram.BotNames)
	assert.Equal(t, 10.0, cfg.Penalty.DailyRatePercent)
	assert.Equal(t, BackendRedis, cfg.Storage.MemoryBackend)
	assert.Equal(t, 5*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, int64(42), cfg.Telegram.LeaderID)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GEMINI_API_KEY", "key")

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad backend", "STORAGE_BACKEND", "sqlite", "not one of json, postgres"},
		{"bad memory backend", "MEMORY_BACKEND", "postgres", "not one of json, redis"},
		{"bad tribute hour", "TRIBUTE_HOUR", "25", "TRIBUTE_HOUR must be 0-23"},
		{"zero penalty unit", "PENALTY_UNIT", "0", "PENALTY_UNIT must be positive"},
		{"zero threshold", "PENALTY_ESCALATION_THRESHOLD", "0", "PENALTY_ESCALATION_THRESHOLD must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresBackendRequiresURL(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("POSTGRES_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_URL is required")
}

func TestFeatureFlags(t *testing.T) {
	t.Setenv("FEATURE_VIDEO_FETCH", "false")

	ff := LoadFeatureFlags()
	assert.True(t, ff.IsEnabled(FeatureAIChat))
	assert.False(t, ff.IsEnabled(FeatureVideoFetch))
	assert.False(t, ff.IsEnabled(Feature("unknown")))

	ff.Set(FeatureVideoFetch, true)
	assert.True(t, ff.IsEnabled(FeatureVideoFetch))

	assert.Contains(t, ff.Enabled(), "ai_chat")
}
