package config

import (
	"flag"
	"time"
)

// cliFlags holds raw flag values. Only flags that were explicitly set are
// copied into Config, so unset flags never mask the JSON or env layers.
//
// Supported flags:
//
//	-c, -config string  JSON config file
//	-a string           HTTP bind address (e.g. ":5000")
//	-g string           gRPC health bind address (e.g. ":50051")
//	-d string           PostgreSQL DSN; empty selects in-memory storage
//	-s string           JWT HMAC secret key
//	-t duration         access token validity (e.g. "1h")
//	-r string           Redis address
//	-revoke             revoke tokens on logout
//	-trust-proxy        take the client address from X-Forwarded-For / X-Real-IP
//	-log-level string   debug, info, warn or error
//	-log-format string  json or text
type cliFlags struct {
	configFile     string
	httpAddr       string
	grpcAddr       string
	dsn            string
	secret         string
	tokenValidity  time.Duration
	redisAddr      string
	revokeOnLogout bool
	trustProxy     bool
	logLevel       string
	logFormat      string
}

func newFlagSet() (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("taskkeeper", flag.ContinueOnError)

	fs.StringVar(&f.configFile, "config", "", "path to JSON config file")
	fs.StringVar(&f.configFile, "c", "", "path to JSON config file (short)")
	fs.StringVar(&f.httpAddr, "a", "", "HTTP address and port to run server")
	fs.StringVar(&f.grpcAddr, "g", "", "gRPC health address and port")
	fs.StringVar(&f.dsn, "d", "", "database DSN")
	fs.StringVar(&f.secret, "s", "", "secret key")
	fs.DurationVar(&f.tokenValidity, "t", 0, "access token validity duration")
	fs.StringVar(&f.redisAddr, "r", "", "redis address")
	fs.BoolVar(&f.revokeOnLogout, "revoke", false, "revoke access tokens on logout")
	fs.BoolVar(&f.trustProxy, "trust-proxy", false, "trust X-Forwarded-For / X-Real-IP for the client address")
	fs.StringVar(&f.logLevel, "log-level", "", "log level")
	fs.StringVar(&f.logFormat, "log-format", "", "log format (json or text)")

	return fs, f
}

func (f *cliFlags) apply(fs *flag.FlagSet, config *Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "a":
			config.HTTPAddr = f.httpAddr
		case "g":
			config.GRPCAddr = f.grpcAddr
		case "d":
			config.DatabaseDSN = f.dsn
		case "s":
			config.SecretKey = f.secret
		case "t":
			config.AccessTokenValidityDuration = f.tokenValidity
		case "r":
			config.RedisAddr = f.redisAddr
		case "revoke":
			config.RevokeOnLogout = f.revokeOnLogout
		case "trust-proxy":
			config.TrustProxyHeaders = f.trustProxy
		case "log-level":
			config.LogLevel = f.logLevel
		case "log-format":
			config.LogFormat = f.logFormat
		}
	})
}
