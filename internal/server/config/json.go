package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JsonConfig mirrors Config for JSON decoding. Pointer fields distinguish an
// absent key from a zero value so that only keys present in the file
// override earlier layers.
type JsonConfig struct {
	HTTPAddr                    *string   `json:"http_addr"`
	GRPCAddr                    *string   `json:"grpc_addr"`
	DatabaseDSN                 *string   `json:"database_dsn"`
	SecretKey                   *string   `json:"secret_key"`
	AccessTokenValidityDuration *Duration `json:"access_token_validity_duration"`
	BcryptCost                  *int      `json:"bcrypt_cost"`
	RequestTimeout              *Duration `json:"request_timeout"`
	ShutdownTimeout             *Duration `json:"shutdown_timeout"`
	CORSOrigins                 []string  `json:"cors_origins"`
	RedisAddr                   *string   `json:"redis_addr"`
	RedisPassword               *string   `json:"redis_password"`
	RedisDB                     *int      `json:"redis_db"`
	RevokeOnLogout              *bool     `json:"revoke_on_logout"`
	AuthRateLimit               *int      `json:"auth_rate_limit"`
	AuthRateLimitWindow         *Duration `json:"auth_rate_limit_window"`
	TrustProxyHeaders           *bool     `json:"trust_proxy_headers"`
	LogLevel                    *string   `json:"log_level"`
	LogFormat                   *string   `json:"log_format"`
}

func parseJSON(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setInt(&config.BcryptCost, c.BcryptCost)
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	if c.RevokeOnLogout != nil {
		config.RevokeOnLogout = *c.RevokeOnLogout
	}
	setInt(&config.AuthRateLimit, c.AuthRateLimit)
	setDuration(&config.AuthRateLimitWindow, c.AuthRateLimitWindow)
	if c.TrustProxyHeaders != nil {
		config.TrustProxyHeaders = *c.TrustProxyHeaders
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
