package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":5000", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Empty(t, c.DatabaseDSN)
	assert.Equal(t, time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.False(t, c.RevokeOnLogout)
	assert.False(t, c.TrustProxyHeaders, "proxy headers must be opt-in")
	assert.Equal(t, []string{"http://127.0.0.1:5500", "http://localhost:3000"}, c.CORSOrigins)
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_NoSources(t *testing.T) {
	c, err := LoadConfig(nil, envMap(nil))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), c))
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeConfigFile(t, `{
		"http_addr": ":7000",
		"grpc_addr": ":7001",
		"database_dsn": "postgres://json",
		"secret_key": "from-json",
		"access_token_validity_duration": "30m",
		"request_timeout": 5000000000,
		"cors_origins": ["https://app.example"],
		"revoke_on_logout": true,
		"log_format": "text"
	}`)

	env := envMap(map[string]string{
		"DATABASE_DSN":     "postgres://env",
		"JWT_SECRET":       "from-env",
		"REDIS_ADDR":       "redis:6379",
		"REDIS_DB":         "2",
		"AUTH_RATE_LIMIT":  "5",
		"CORS_ORIGINS":     "https://a.example, https://b.example,",
		"ACCESS_TOKEN_TTL": "45m",
	})

	c, err := LoadConfig([]string{"-c", path, "-s", "from-flag", "-log-level", "debug"}, env)
	require.NoError(t, err)

	want := defaults()
	want.HTTPAddr = ":7000"
	want.GRPCAddr = ":7001"
	want.DatabaseDSN = "postgres://env"
	want.SecretKey = "from-flag"
	want.AccessTokenValidityDuration = 45 * time.Minute
	want.RequestTimeout = 5 * time.Second
	want.CORSOrigins = []string{"https://a.example", "https://b.example"}
	want.RevokeOnLogout = true
	want.RedisAddr = "redis:6379"
	want.RedisDB = 2
	want.AuthRateLimit = 5
	want.LogLevel = "debug"
	want.LogFormat = "text"

	assert.Empty(t, cmp.Diff(want, c))
}

func TestLoadConfig_UnsetFlagsKeepEarlierLayers(t *testing.T) {
	path := writeConfigFile(t, `{"http_addr": ":9999"}`)

	c, err := LoadConfig([]string{"-config=" + path, "-d", "postgres://flag"}, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, "postgres://flag", c.DatabaseDSN)
}

func TestLoadConfig_TrustProxyHeaders(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want bool
	}{
		{name: "default"},
		{name: "json", args: []string{"-c", writeConfigFile(t, `{"trust_proxy_headers": true}`)}, want: true},
		{name: "env", env: map[string]string{"TRUST_PROXY_HEADERS": "true"}, want: true},
		{name: "flag", args: []string{"-trust-proxy"}, want: true},
		{
			name: "flag overrides env",
			args: []string{"-trust-proxy=false"},
			env:  map[string]string{"TRUST_PROXY_HEADERS": "true"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := LoadConfig(tt.args, envMap(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.TrustProxyHeaders)
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "unknown flag", args: []string{"-x"}},
		{name: "missing file", args: []string{"-c", filepath.Join(t.TempDir(), "nope.json")}},
		{name: "bad json", args: []string{"-c", writeConfigFile(t, `{`)}},
		{name: "bad json duration", args: []string{"-c", writeConfigFile(t, `{"request_timeout": true}`)}},
		{name: "bad env duration", env: map[string]string{"REQUEST_TIMEOUT": "soon"}},
		{name: "bad env int", env: map[string]string{"BCRYPT_COST": "ten"}},
		{name: "bad env bool", env: map[string]string{"REVOKE_ON_LOGOUT": "maybe"}},
		{name: "bad env trust proxy", env: map[string]string{"TRUST_PROXY_HEADERS": "maybe"}},
		{name: "bcrypt cost out of range", env: map[string]string{"BCRYPT_COST": "99"}},
		{name: "empty secret", args: []string{"-s", ""}},
		{name: "non-positive validity", args: []string{"-t", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args, envMap(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1h30m"`)))
	assert.Equal(t, 90*time.Minute, d.Duration)

	require.NoError(t, d.UnmarshalJSON([]byte(`1000`)))
	assert.Equal(t, time.Microsecond, d.Duration)

	assert.Error(t, d.UnmarshalJSON([]byte(`"later"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`[]`)))

	b, err := Duration{Duration: 2 * time.Second}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(b))
}
