package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func stubDotEnv(t *testing.T) {
	t.Helper()
	orig := loadDotEnv
	loadDotEnv = func() error { return nil }
	t.Cleanup(func() { loadDotEnv = orig })
}

func TestParseEnv_Overrides(t *testing.T) {
	stubDotEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("DATABASE_URL", "postgres://db")
	t.Setenv("JWT_SECRET_KEY", "env-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("HEYGEN_API_KEY", "hg-test")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("HEYGEN_PROXY_HOSTS", "media.example")
	t.Setenv("DEBUG", "true")
	t.Setenv("PROBE_TIMEOUT", "3s")
	t.Setenv("HEALTH_TIMEOUT", "500ms")
	t.Setenv("VENDOR_TIMEOUT", "1m")
	t.Setenv("AUTH_RATE_LIMIT", "2.5")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":7000", c.HTTPAddr)
	assert.Equal(t, "postgres://db", c.DatabaseDSN)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "sk-test", c.OpenAIAPIKey)
	assert.Equal(t, "hg-test", c.HeygenAPIKey)
	assert.Equal(t, "redis://localhost:6379/0", c.RedisURL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.CORSOrigins)
	assert.Equal(t, []string{"media.example"}, c.HeygenProxyHosts)
	assert.True(t, c.Debug)
	assert.Equal(t, 3*time.Second, c.ProbeTimeout)
	assert.Equal(t, 500*time.Millisecond, c.HealthTimeout)
	assert.Equal(t, time.Minute, c.VendorTimeout)
	assert.Equal(t, 2.5, c.AuthRateLimit)
}

func TestParseEnv_HTTPAddrBeatsPort(t *testing.T) {
	stubDotEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9999")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "127.0.0.1:9999", c.HTTPAddr)
}

func TestParseEnv_IgnoresMalformedValues(t *testing.T) {
	stubDotEnv(t)
	t.Setenv("REFRESH_TOKEN_TTL", "forever")
	t.Setenv("DEBUG", "maybe")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, 720*time.Hour, c.RefreshTokenValidityDuration)
	assert.False(t, c.Debug)
}
