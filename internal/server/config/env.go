package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays values from environment variables. Unset or empty
// variables leave the current value untouched.
//
// Variables:
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_DSN, JWT_SECRET, ACCESS_TOKEN_TTL,
//	BCRYPT_COST, REQUEST_TIMEOUT, SHUTDOWN_TIMEOUT, CORS_ORIGINS (comma separated),
//	REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, REVOKE_ON_LOGOUT,
//	AUTH_RATE_LIMIT, AUTH_RATE_LIMIT_WINDOW, TRUST_PROXY_HEADERS, LOG_LEVEL, LOG_FORMAT
func parseEnv(config *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}

	envString(getenv, "HTTP_ADDR", &config.HTTPAddr)
	envString(getenv, "GRPC_ADDR", &config.GRPCAddr)
	envString(getenv, "DATABASE_DSN", &config.DatabaseDSN)
	envString(getenv, "JWT_SECRET", &config.SecretKey)
	envString(getenv, "REDIS_ADDR", &config.RedisAddr)
	envString(getenv, "REDIS_PASSWORD", &config.RedisPassword)
	envString(getenv, "LOG_LEVEL", &config.LogLevel)
	envString(getenv, "LOG_FORMAT", &config.LogFormat)

	if v := getenv("CORS_ORIGINS"); v != "" {
		config.CORSOrigins = splitList(v)
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL":       &config.AccessTokenValidityDuration,
		"REQUEST_TIMEOUT":        &config.RequestTimeout,
		"SHUTDOWN_TIMEOUT":       &config.ShutdownTimeout,
		"AUTH_RATE_LIMIT_WINDOW": &config.AuthRateLimitWindow,
	}
	for name, dst := range durations {
		if v := getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"BCRYPT_COST":     &config.BcryptCost,
		"REDIS_DB":        &config.RedisDB,
		"AUTH_RATE_LIMIT": &config.AuthRateLimit,
	}
	for name, dst := range ints {
		if v := getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"REVOKE_ON_LOGOUT":    &config.RevokeOnLogout,
		"TRUST_PROXY_HEADERS": &config.TrustProxyHeaders,
	}
	for name, dst := range bools {
		if v := getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}
			*dst = b
		}
	}

	return nil
}

func envString(getenv func(string) string, name string, dst *string) {
	if v := getenv(name); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
