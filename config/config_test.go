package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"COURT_API_URL", "COURT_HTTP_TIMEOUT", "COURT_MAX_ATTEMPTS", "COURT_LOG_LEVEL", "COURT_LOG_FILE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadWithFile_Environment(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("XDG_CACHE_HOME", t.TempDir())

		cfg, err := LoadWithFile("")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
		assert.Equal(t, 12*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 1, cfg.MaxAttempts)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.NotEmpty(t, cfg.LogFile)
	})

	t.Run("overrides and trailing slash", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COURT_API_URL", "https://courts.example.com/api/")
		t.Setenv("COURT_HTTP_TIMEOUT", "3s")
		t.Setenv("COURT_MAX_ATTEMPTS", "3")
		t.Setenv("COURT_LOG_FILE", "/tmp/court.log")

		cfg, err := LoadWithFile("")
		require.NoError(t, err)
		assert.Equal(t, "https://courts.example.com/api", cfg.APIURL)
		assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 3, cfg.MaxAttempts)
		assert.Equal(t, "/tmp/court.log", cfg.LogFile)
	})

	invalid := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "bad scheme", key: "COURT_API_URL", value: "ftp://courts", wantErr: "http or https"},
		{name: "missing host", key: "COURT_API_URL", value: "http://", wantErr: "host"},
		{name: "zero attempts", key: "COURT_MAX_ATTEMPTS", value: "0", wantErr: "COURT_MAX_ATTEMPTS"},
		{name: "negative timeout", key: "COURT_HTTP_TIMEOUT", value: "-1s", wantErr: "COURT_HTTP_TIMEOUT"},
		{name: "unparsable attempts", key: "COURT_MAX_ATTEMPTS", value: "many", wantErr: "read environment"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadWithFile("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWithFile(t *testing.T) {
	t.Run("reads env file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("COURT_API_URL=http://backend:8080/api\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("COURT_API_URL") })

		cfg, err := LoadWithFile(path)
		require.NoError(t, err)
		assert.Equal(t, "http://backend:8080/api", cfg.APIURL)
	})

	t.Run("missing env file is ignored", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadWithFile(filepath.Join(t.TempDir(), "absent.env"))
		require.NoError(t, err)
	})
}
