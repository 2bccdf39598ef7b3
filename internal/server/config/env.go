package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv reads a .env file from the working directory, if any. Variables
// already present in the process environment are not overwritten.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays values from environment variables. PORT is honoured for
// platforms that only hand out a port number; HTTP_ADDR takes precedence.
// Malformed durations and numbers are ignored.
func parseEnv(config *Config) {
	_ = loadDotEnv()

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.HTTPAddr = ":" + v
	}
	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_URL")
	envString(&config.SecretKey, "JWT_SECRET_KEY")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envDuration(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")
	envString(&config.OpenAIAPIKey, "OPENAI_API_KEY")
	envString(&config.OpenAIBaseURL, "OPENAI_BASE_URL")
	envString(&config.HeygenAPIKey, "HEYGEN_API_KEY")
	envString(&config.HeygenBaseURL, "HEYGEN_BASE_URL")
	envString(&config.RedisURL, "REDIS_URL")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.LogFormat, "LOG_FORMAT")
	envDuration(&config.VendorTimeout, "VENDOR_TIMEOUT")
	envDuration(&config.ProbeTimeout, "PROBE_TIMEOUT")
	envDuration(&config.HealthTimeout, "HEALTH_TIMEOUT")

	if v, ok := os.LookupEnv("AUTH_RATE_LIMIT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			config.AuthRateLimit = f
		}
	}

	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok && v != "" {
		config.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("HEYGEN_PROXY_HOSTS"); ok && v != "" {
		config.HeygenProxyHosts = splitList(v)
	}
	if v, ok := os.LookupEnv("DEBUG"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Debug = b
		}
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
