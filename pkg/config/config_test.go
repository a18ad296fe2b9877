package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `
server:
  listen: ":9090"
  timeout: 45s
  throttle: 10
feed:
  url: https://hnrss.org/jobs
  timeout: 5s
  user_agent: test/1.0
  workers: 2
page:
  dir: /srv/dist
  loading_text: wait
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, int64(10), cfg.Server.Throttle)
		assert.Equal(t, "https://hnrss.org/jobs", cfg.Feed.URL)
		assert.Equal(t, 5*time.Second, cfg.Feed.Timeout)
		assert.Equal(t, "test/1.0", cfg.Feed.UserAgent)
		assert.Equal(t, 2, cfg.Feed.Workers)
		assert.Equal(t, "/srv/dist", cfg.Page.Dir)
		assert.Equal(t, "wait", cfg.Page.LoadingText)
		assert.Equal(t, DefaultStyleScript, cfg.Page.StyleScript)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "page:\n  dir: dist\n"))
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
		assert.Equal(t, 60*time.Second, cfg.Server.Timeout)
		assert.Equal(t, int64(100), cfg.Server.Throttle)
		assert.Equal(t, DefaultFeedURL, cfg.Feed.URL)
		assert.Equal(t, 10*time.Second, cfg.Feed.Timeout)
		assert.Equal(t, int64(5*1024*1024), cfg.Feed.MaxSize)
		assert.Equal(t, 4, cfg.Feed.Workers)
		assert.Equal(t, New(), func() *Config { c := *cfg; c.Page.Dir = ""; return &c }())
	})

	t.Run("zero throttle gets default", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "server:\n  throttle: 0\n"))
		require.NoError(t, err)
		assert.Equal(t, int64(100), cfg.Server.Throttle)
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("FEEDRANK_TEST_URL", "https://example.com/rss")
		cfg, err := Load(writeConfig(t, "feed:\n  url: ${FEEDRANK_TEST_URL}\n"))
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/rss", cfg.Feed.URL)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/non-existent/config.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "invalid: yaml: content: ["))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "feed:\n  timeout: 2m\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be less than server timeout")
	})
}

func TestConfig_Validate(t *testing.T) {
	tbl := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", modify: func(c *Config) {}},
		{name: "short server timeout", modify: func(c *Config) { c.Server.Timeout = time.Millisecond }, wantErr: "server timeout"},
		{name: "negative throttle", modify: func(c *Config) { c.Server.Throttle = -1 }, wantErr: "throttle"},
		{name: "relative feed url", modify: func(c *Config) { c.Feed.URL = "/rss" }, wantErr: "absolute http(s) url"},
		{name: "ftp feed url", modify: func(c *Config) { c.Feed.URL = "ftp://example.com/rss" }, wantErr: "absolute http(s) url"},
		{name: "bad feed url", modify: func(c *Config) { c.Feed.URL = "http://[::1" }, wantErr: "invalid feed url"},
		{name: "negative feed timeout", modify: func(c *Config) { c.Feed.Timeout = -time.Second }, wantErr: "feed timeout must be positive"},
		{name: "negative max size", modify: func(c *Config) { c.Feed.MaxSize = -1 }, wantErr: "max_size"},
		{name: "no workers", modify: func(c *Config) { c.Feed.Workers = 0 }, wantErr: "workers"},
	}

	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema()
	require.NotNil(t, schema)

	data, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"listen"`)
	assert.Contains(t, string(data), `"user_agent"`)
	assert.Contains(t, string(data), `"style_script"`)
}
