package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/i18n-sync.toml", []byte(`
project = "acme/web"
locale = "de"
source_dirs = ["src", "app"]
cache_ttl = "30s"
retries = 0
hold_dynamic_for_review = true
`), 0o644))

	cfg, err := Load(fs, "/app/i18n-sync.toml", map[string]string{})
	require.NoError(t, err)
	require.Equal(t, "acme/web", cfg.Project)
	require.Equal(t, "de", cfg.Locale)
	require.Equal(t, []string{"src", "app"}, cfg.SourceDirs)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, 0, *cfg.Retries)
	require.True(t, cfg.HoldDynamicForReview)

	require.Equal(t, DefaultCDNURL, cfg.CDNURL)
	require.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	require.Equal(t, []string{".ts", ".tsx", ".js", ".jsx"}, cfg.Extensions)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cfg.toml", []byte(`project = "acme/web"`), 0o644))

	cfg, err := Load(fs, "cfg.toml", map[string]string{
		"I18N_SYNC_PROJECT":     "acme/mobile",
		"I18N_SYNC_SOURCE_DIRS": "lib,screens",
		"I18N_SYNC_CACHE_TTL":   "1h",
		"I18N_SYNC_REDIS_ADDR":  "redis://localhost:6379",
		"UNRELATED":             "x",
	})
	require.NoError(t, err)
	require.Equal(t, "acme/mobile", cfg.Project)
	require.Equal(t, []string{"lib", "screens"}, cfg.SourceDirs)
	require.Equal(t, time.Hour, cfg.CacheTTL)
	require.Equal(t, "redis://localhost:6379", cfg.RedisAddr)
	require.Equal(t, DefaultRetries, *cfg.Retries)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "", map[string]string{"I18N_SYNC_TREE_FILE": "en.json"})
	require.NoError(t, err)
	require.Equal(t, "en.json", cfg.TreeFile)
	require.Equal(t, DefaultLocale, cfg.Locale)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{"malformed project", map[string]string{"I18N_SYNC_PROJECT": "acme"}},
		{"bad locale", map[string]string{"I18N_SYNC_PROJECT": "a/b", "I18N_SYNC_LOCALE": "not a locale"}},
		{"bad extension", map[string]string{"I18N_SYNC_PROJECT": "a/b", "I18N_SYNC_EXTENSIONS": "ts"}},
		{"negative retries", map[string]string{"I18N_SYNC_PROJECT": "a/b", "I18N_SYNC_RETRIES": "-1"}},
		{"bad log level", map[string]string{"I18N_SYNC_PROJECT": "a/b", "I18N_SYNC_LOG_LEVEL": "loud"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(afero.NewMemMapFs(), "", tc.environ)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.toml", map[string]string{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalid)
}

func TestRequireRemote(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "", map[string]string{})
	require.NoError(t, err)
	require.ErrorIs(t, cfg.RequireRemote(), ErrInvalid)

	cfg, err = Load(afero.NewMemMapFs(), "", map[string]string{}, func(c *Config) {
		c.TreeFile = "messages/en.json"
	})
	require.NoError(t, err)
	require.NoError(t, cfg.RequireRemote())
}
