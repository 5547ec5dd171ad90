package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		body   *string
		getenv func(string) string
		want   *Config
	}{
		{
			name:   "missing file keeps defaults",
			getenv: noEnv,
			want:   &Config{ServerURL: DefaultServerURL, Timeout: DefaultTimeout},
		},
		{
			name:   "file overrides defaults",
			body:   ptr("server_url: https://tasks.example.com\ntimeout: 3s\n"),
			getenv: noEnv,
			want:   &Config{ServerURL: "https://tasks.example.com", Timeout: 3 * time.Second},
		},
		{
			name:   "partial file",
			body:   ptr("timeout: 1m\n"),
			getenv: noEnv,
			want:   &Config{ServerURL: DefaultServerURL, Timeout: time.Minute},
		},
		{
			name: "env beats file",
			body: ptr("server_url: http://file:1\n"),
			getenv: func(k string) string {
				if k == "TASKKEEPER_SERVER_URL" {
					return "http://env:2"
				}
				return ""
			},
			want: &Config{ServerURL: "http://env:2", Timeout: DefaultTimeout},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.yaml")
			if tt.body != nil {
				path = writeFile(t, *tt.body)
			}

			got, err := Load(path, tt.getenv)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	for name, body := range map[string]string{
		"bad yaml":     "server_url: [",
		"bad timeout":  "timeout: soon\n",
		"bad url":      "server_url: ftp://x\n",
		"zero timeout": "timeout: 0s\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body), noEnv)
			require.Error(t, err)
		})
	}
}

func ptr(s string) *string { return &s }
