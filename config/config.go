// Package config loads i18n-sync settings from an optional TOML file and
// I18N_SYNC_* environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
)

// FileName is the config file looked up in the project root.
const FileName = "i18n-sync.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "I18N_SYNC_"

var ErrInvalid = errors.New("invalid configuration")

const (
	DefaultCDNURL         = "https://cdn.better-i18n.com"
	DefaultLocale         = "en"
	DefaultCacheDir       = ".i18n-sync/cache"
	DefaultCacheTTL       = 5 * time.Minute
	DefaultRequestTimeout = 10 * time.Second
	DefaultRetries        = 2
	DefaultLogLevel       = "info"
)

var defaultExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// Config holds every setting of the tool.
type Config struct {
	// Project is the remote project in "org/project" form.
	Project string `toml:"project" env:"PROJECT"`
	CDNURL  string `toml:"cdn_url" env:"CDN_URL"`
	Locale  string `toml:"locale" env:"LOCALE"`

	SourceDirs []string `toml:"source_dirs" env:"SOURCE_DIRS" envSeparator:","`
	Extensions []string `toml:"extensions" env:"EXTENSIONS" envSeparator:","`

	// UsagesFile and TreeFile replace the built-in scanner and the remote
	// fetch with pre-computed inputs.
	UsagesFile string `toml:"usages_file" env:"USAGES_FILE"`
	TreeFile   string `toml:"tree_file" env:"TREE_FILE"`

	CacheDir       string        `toml:"cache_dir" env:"CACHE_DIR"`
	CacheTTL       time.Duration `toml:"cache_ttl" env:"CACHE_TTL"`
	RequestTimeout time.Duration `toml:"request_timeout" env:"REQUEST_TIMEOUT"`
	Retries        *int          `toml:"retries" env:"RETRIES"`
	RedisAddr      string        `toml:"redis_addr" env:"REDIS_ADDR"`

	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	HoldDynamicForReview bool `toml:"hold_dynamic_for_review" env:"HOLD_DYNAMIC_FOR_REVIEW"`
}

// Load reads path from fs when path is not empty, applies environment
// overrides from environ (the process environment when nil) and then the
// given overrides, fills in defaults and validates the result.
func Load(fs afero.Fs, path string, environ map[string]string, overrides ...func(*Config)) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.CDNURL == "" {
		c.CDNURL = DefaultCDNURL
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if len(c.SourceDirs) == 0 {
		c.SourceDirs = []string{"."}
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), defaultExtensions...)
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.Retries == nil {
		retries := DefaultRetries
		c.Retries = &retries
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Project != "" && strings.Count(strings.Trim(c.Project, "/"), "/") != 1 {
		return fmt.Errorf("%w: project %q must have the form org/project", ErrInvalid, c.Project)
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("%w: locale %q: %v", ErrInvalid, c.Locale, err)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalid, ext)
		}
	}
	if c.Retries != nil && *c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalid)
	}
	if c.CacheTTL < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalid)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// RequireRemote reports an error when the remote tree would have to be
// fetched but no project is configured.
func (c *Config) RequireRemote() error {
	if c.TreeFile == "" && c.Project == "" {
		return fmt.Errorf("%w: project is required unless tree_file is set", ErrInvalid)
	}
	return nil
}
