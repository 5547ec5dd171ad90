// Package config handles configuration for the server component: defaults,
// an optional JSON file, environment variables (with .env support) and
// command-line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime settings for the TaskKeeper server.
//
// An empty DatabaseDSN selects in-memory storage; an empty RedisAddr keeps the
// revocation denylist and rate limiter in process memory. TrustProxyHeaders
// lets X-Forwarded-For / X-Real-IP pick the client address; enable it only
// behind a proxy that overwrites those headers.
type Config struct {
	HTTPAddr                    string
	GRPCAddr                    string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	BcryptCost                  int
	RequestTimeout              time.Duration
	ShutdownTimeout             time.Duration
	CORSOrigins                 []string
	RedisAddr                   string
	RedisPassword               string
	RedisDB                     int
	RevokeOnLogout              bool
	AuthRateLimit               int
	AuthRateLimitWindow         time.Duration
	TrustProxyHeaders           bool
	LogLevel                    string
	LogFormat                   string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5000"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "your_secret_key"
	c.AccessTokenValidityDuration = time.Hour
	c.BcryptCost = 10
	c.RequestTimeout = 15 * time.Second
	c.ShutdownTimeout = 10 * time.Second
	c.CORSOrigins = []string{"http://127.0.0.1:5500", "http://localhost:3000"}
	c.RedisAddr = ""
	c.RedisPassword = ""
	c.RedisDB = 0
	c.RevokeOnLogout = false
	c.AuthRateLimit = 20
	c.AuthRateLimitWindow = time.Minute
	c.TrustProxyHeaders = false
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config from defaults, then the JSON file named by -c or
// -config, then the environment, then the remaining flags.
func LoadConfig(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs, flags := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if flags.configFile != "" {
		if err := parseJSON(cfg, flags.configFile); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg, getenv); err != nil {
		return nil, err
	}

	flags.apply(fs, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.SecretKey == "":
		return errors.New("secret key must not be empty")
	case c.AccessTokenValidityDuration <= 0:
		return errors.New("access token validity must be positive")
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	case c.HTTPAddr == "":
		return errors.New("http address must not be empty")
	}
	return nil
}
