package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{APIKey: "valid-api-key"},
		Browse: BrowseConfig{
			InitialList:       "popular",
			PrefetchThreshold: 0.75,
			MaxPages:          500,
			Workers:           4,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "missing api key", modify: func(c *Config) { c.TMDB.APIKey = "" }, wantErr: "tmdb.api_key"},
		{name: "placeholder api key", modify: func(c *Config) { c.TMDB.APIKey = "your-api-key-here" }, wantErr: "tmdb.api_key"},
		{name: "unknown list", modify: func(c *Config) { c.Browse.InitialList = "trending" }, wantErr: "browse.initial_list"},
		{name: "top rated alias", modify: func(c *Config) { c.Browse.InitialList = "top_rated" }},
		{name: "zero threshold", modify: func(c *Config) { c.Browse.PrefetchThreshold = 0 }, wantErr: "prefetch_threshold"},
		{name: "threshold above one", modify: func(c *Config) { c.Browse.PrefetchThreshold = 1.5 }, wantErr: "prefetch_threshold"},
		{name: "threshold of one", modify: func(c *Config) { c.Browse.PrefetchThreshold = 1 }},
		{name: "no pages", modify: func(c *Config) { c.Browse.MaxPages = 0 }, wantErr: "max_pages"},
		{name: "negative workers", modify: func(c *Config) { c.Browse.Workers = -1 }, wantErr: "workers"},
		{name: "empty filter", modify: func(c *Config) { c.Filter = FilterConfig{"recent": " "} }, wantErr: "recent"},
		{name: "bad level", modify: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "logging level"},
		{name: "bad format", modify: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
tmdb:
  api_key: abc123
  timeout: 3s
browse:
  initial_list: upcoming
  prefetch_threshold: 0.5
filter:
  recent: "Year >= 2020"
  acclaimed: "HasRating && Rating >= 8"
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.TMDB.APIKey)
	assert.Equal(t, 3*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.Equal(t, "upcoming", cfg.Browse.InitialList)
	assert.InDelta(t, 0.5, cfg.Browse.PrefetchThreshold, 1e-9)
	assert.Equal(t, 500, cfg.Browse.MaxPages)
	assert.Equal(t, 200, cfg.Browse.PosterSize)
	assert.Equal(t, 400, cfg.Browse.DetailPosterSize)
	assert.Len(t, cfg.Filter, 2)
	assert.Equal(t, "Year >= 2020", cfg.Filter["recent"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Library.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tmdb:\n  api_key: from-file\n"), 0o600))

	t.Setenv("MARQUEE_TMDB_API_KEY", "from-env")
	t.Setenv("MARQUEE_BROWSE_WORKERS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
	assert.Equal(t, 8, cfg.Browse.Workers)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tmdb:\n  api_key: k\nbrowse:\n  prefetch_threshold: 2\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
