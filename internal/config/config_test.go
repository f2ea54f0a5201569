package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "medbot-submissions", cfg.S3.Bucket)
	assert.Equal(t, int64(50), cfg.S3.MaxFileSizeMB)
	assert.Equal(t, 15, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 300, cfg.RateLimit.MinIntervalMS)
	assert.Equal(t, "openai", cfg.Extractor.Secondary.Provider)
	assert.Equal(t, "claude", cfg.Extractor.Tertiary.Provider)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MEDBOT_SERVER_PORT", ":9999")
	t.Setenv("MEDBOT_AWS_REGION", "me-central-1")
	t.Setenv("MEDBOT_S3_MAX_FILE_SIZE_MB", "10")
	t.Setenv("MEDBOT_RATE_LIMIT_REQUESTS_PER_MINUTE", "5")
	t.Setenv("MEDBOT_CORS_ALLOWED_ORIGINS", "https://app.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Port)
	assert.Equal(t, "me-central-1", cfg.AWS.Region)
	assert.Equal(t, int64(10), cfg.S3.MaxFileSizeMB)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadPlatformPortFallback(t *testing.T) {
	t.Setenv("PORT", "3000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Port)
}

func TestLoadExplicitPortBeatsPlatformPort(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("MEDBOT_SERVER_PORT", ":9000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)
}

func TestSecondaryConfigRequiresAPIKey(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	// Provider defaults are set but no key is configured.
	assert.Nil(t, cfg.Extractor.SecondaryConfig())
	assert.Nil(t, cfg.Extractor.TertiaryConfig())
}

func TestSecondaryConfigWithKey(t *testing.T) {
	t.Setenv("MEDBOT_EXTRACTOR_SECONDARY_API_KEY", "sk-test")
	t.Setenv("MEDBOT_EXTRACTOR_SECONDARY_DEFAULT_MODEL", "gpt-4o")

	cfg, err := config.Load()
	require.NoError(t, err)

	sec := cfg.Extractor.SecondaryConfig()
	require.NotNil(t, sec)
	assert.Equal(t, "openai", sec.Provider)
	assert.Equal(t, "sk-test", sec.APIKey)
	assert.Equal(t, "gpt-4o", sec.DefaultModel)
	assert.Nil(t, cfg.Extractor.TertiaryConfig())
}
