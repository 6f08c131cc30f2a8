package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	assert.NoError(t, validateConfig(GetDefaults()))
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  max_text_bytes: 2048
privacy:
  match_timeout: 250ms
credential:
  issuer: Acme Talent
logging:
  level: debug
  format: console
cache:
  enabled: true
  credential_ttl: 24h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(2048), cfg.Server.MaxTextBytes)
	assert.Equal(t, 250*time.Millisecond, cfg.Privacy.MatchTimeout)
	assert.Equal(t, "Acme Talent", cfg.Credential.Issuer)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.CredentialTTL)

	// Untouched sections keep their defaults.
	assert.Equal(t, "matchly:credential:", cfg.Cache.KeyPrefix)
	assert.Equal(t, "/ws", cfg.WebSocket.Path)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("MATCHLY_SERVER_PORT", "7070")
	t.Setenv("MATCHLY_CREDENTIAL_ISSUER", "Env Issuer")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "Env Issuer", cfg.Credential.Issuer)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"port", "server:\n  port: 70000\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"log format", "logging:\n  format: xml\n"},
		{"issuer", "credential:\n  issuer: ' '\n"},
		{"rate limit", "rate_limit:\n  enabled: true\n  burst: 0\n"},
		{"audit url", "audit:\n  enabled: true\n  database_url: ''\n"},
		{"ws path", "websocket:\n  path: ws\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
