package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	errs "sessionctl/cli/internal/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestLoadLayers(t *testing.T) {
	p := writeFile(t, `
api:
  url: https://auth.internal.example
  timeout: 3s
refresh:
  leeway: 45s
log:
  level: debug
`)
	t.Setenv("SESSIONCTL_REFRESH_LEEWAY", "1m")

	c, err := Load(p, map[string]any{"log.level": "warn"})
	require.NoError(t, err)
	require.Equal(t, "https://auth.internal.example", c.API.URL)
	require.Equal(t, 3*time.Second, c.API.Timeout)
	require.Equal(t, time.Minute, c.Refresh.Leeway)
	require.Equal(t, "warn", c.Log.Level)
	// Untouched keys keep their defaults.
	require.Equal(t, "/v3/auth/login", c.Endpoints.Login)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad url", content: "api:\n  url: not a url\n"},
		{name: "zero timeout", content: "api:\n  timeout: 0s\n"},
		{name: "negative leeway", content: "refresh:\n  leeway: -5s\n"},
		{name: "relative endpoint", content: "endpoints:\n  me: users/me\n"},
		{name: "unknown level", content: "log:\n  level: loud\n"},
		{name: "malformed yaml", content: "api: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content), nil)
			require.Error(t, err)
			require.Equal(t, errs.InvalidConfig, errs.KindOf(err))
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	want := Default()
	want.API.URL = "http://localhost:8080"
	want.Refresh.Leeway = 10 * time.Second

	require.NoError(t, Save(p, want))
	info, err := os.Stat(p)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(p, nil)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
