package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList(""))
	assert.Equal(t, []string{"amazon.co.jp", "amzn.to"}, parseList(" Amazon.co.jp, ,amzn.to "))
}

func TestNormalizeDriver(t *testing.T) {
	assert.Equal(t, AnalyticsDriverRedis, normalizeDriver("REDIS"))
	assert.Equal(t, AnalyticsDriverClickHouse, normalizeDriver(" clickhouse "))
	assert.Equal(t, AnalyticsDriverNone, normalizeDriver(""))
	assert.Equal(t, AnalyticsDriverNone, normalizeDriver("kafka"))
}

// TestLoad_Defaults проверяет значения по умолчанию без .env
func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("AFFILIATE_ALLOWED_DOMAINS", "")
	t.Setenv("ADMIN_DEV_BYPASS", "true")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.False(t, cfg.DB.Configured())
	assert.True(t, cfg.Admin.DevBypass)
	assert.Equal(t, []string{"amazon.co.jp"}, cfg.Affiliate.AllowedDomains)
	assert.Equal(t, AnalyticsDriverNone, cfg.Analytics.Driver)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.BurstSize)
}

func TestDBConfig_Configured(t *testing.T) {
	assert.False(t, DBConfig{Host: "localhost"}.Configured())
	assert.True(t, DBConfig{Host: "localhost", Name: "storefront"}.Configured())
}
