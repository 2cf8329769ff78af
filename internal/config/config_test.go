package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  base_url: https://venues.example.com/
log:
  level: debug
chat:
  expand_increment: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://venues.example.com/api/chat", cfg.ChatURL())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Chat.ExpandIncrement)
	assert.Equal(t, "all_venues", cfg.Chat.ExpandableField)
	assert.Equal(t, 35, cfg.Chat.LongLinkThreshold)
	assert.Equal(t, "it", cfg.Geocoder.Language)
	assert.Equal(t, "session.json", filepath.Base(cfg.Chat.SessionFile))
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  base_url: http://localhost:9000\n")
	t.Setenv("VENUE_SERVER_BASE_URL", "http://10.0.0.5:8000")
	t.Setenv("VENUE_CHAT_EXPAND_INCREMENT", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.Server.BaseURL)
	assert.Equal(t, 3, cfg.Chat.ExpandIncrement)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{BaseURL: "http://localhost:8000", ChatPath: "/api/chat"},
			Log:      LogConfig{Level: "info", Format: "text"},
			Chat:     ChatConfig{ExpandIncrement: 6, SessionFile: "s.json", ProfileFile: "p.json", TruncationMarker: "...", BookPrompt: "book %s"},
			Geocoder: GeocoderConfig{BaseURL: "https://nominatim.openstreetmap.org"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.Server.BaseURL = "" }, wantErr: true},
		{name: "base url without scheme", mutate: func(c *Config) { c.Server.BaseURL = "localhost:8000" }, wantErr: true},
		{name: "relative chat path", mutate: func(c *Config) { c.Server.ChatPath = "api/chat" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "zero increment", mutate: func(c *Config) { c.Chat.ExpandIncrement = 0 }, wantErr: true},
		{name: "book prompt without placeholder", mutate: func(c *Config) { c.Chat.BookPrompt = "book it" }, wantErr: true},
		{name: "bad geocoder url", mutate: func(c *Config) { c.Geocoder.BaseURL = "ftp://x" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
