package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "https://api.example.in/api/")
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, "https://api.example.in/api", cfg.BackendBaseURL)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	assert.False(t, cfg.IsProd())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:5000/api")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("UPLOAD_MAX_BYTES", "2048")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.in, ,https://b.in")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(2048), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"https://a.in", "https://b.in"}, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing backend":  {"BACKEND_BASE_URL": ""},
		"backend scheme":   {"BACKEND_BASE_URL": "ftp://x"},
		"bad duration":     {"SESSION_TTL": "soon"},
		"negative ttl":     {"SESSION_TTL": "-1m"},
		"bad upload limit": {"UPLOAD_MAX_BYTES": "lots"},
		"bad log format":   {"LOG_FORMAT": "xml"},
		"prod default jwt": {"APP_ENV": "production"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("BACKEND_BASE_URL", "https://api.example.in")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
