package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/aiinterview/internal/flagx"
	"github.com/dmitrijs2005/aiinterview/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Only fields
// present in the file override the current values.
type JsonConfig struct {
	HTTPAddr                     *string         `json:"http_addr"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	OpenAIBaseURL                *string         `json:"openai_base_url"`
	HeygenBaseURL                *string         `json:"heygen_base_url"`
	HeygenProxyHosts             []string        `json:"heygen_proxy_hosts"`
	VendorTimeout                *timex.Duration `json:"vendor_timeout"`
	ProbeTimeout                 *timex.Duration `json:"probe_timeout"`
	HealthTimeout                *timex.Duration `json:"health_timeout"`
	RedisURL                     *string         `json:"redis_url"`
	CORSOrigins                  []string        `json:"cors_origins"`
	AuthRateLimit                *float64        `json:"auth_rate_limit"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	LogFormat                    *string         `json:"log_format"`
	Debug                        *bool           `json:"debug"`
}

// parseJson overlays values from the file named by -c / -config. Vendor API
// keys are not read from the file; they come from the
// environment or the set-key endpoints. A missing flag is a no-op; an
// unreadable or malformed file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.OpenAIBaseURL, c.OpenAIBaseURL)
	setString(&config.HeygenBaseURL, c.HeygenBaseURL)
	if len(c.HeygenProxyHosts) > 0 {
		config.HeygenProxyHosts = c.HeygenProxyHosts
	}
	setDuration(&config.VendorTimeout, c.VendorTimeout)
	setDuration(&config.ProbeTimeout, c.ProbeTimeout)
	setDuration(&config.HealthTimeout, c.HealthTimeout)
	setString(&config.RedisURL, c.RedisURL)
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogFormat, c.LogFormat)
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
