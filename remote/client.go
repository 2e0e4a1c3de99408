// Package remote fetches the manifest and translation trees of a project from
// the translation CDN. Responses go through an injectable TTL cache and are
// mirrored to a local directory that is used when the network is unavailable.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/language"

	"github.com/better-i18n/i18n-sync/cache"
	"github.com/better-i18n/i18n-sync/tree"
)

var (
	ErrNotFound    = errors.New("remote resource not found")
	ErrUnavailable = errors.New("remote store unavailable")
	ErrTooLarge    = errors.New("remote response too large")
)

const (
	defaultTimeout = 10 * time.Second
	defaultRetries = 2
	defaultBackoff = 500 * time.Millisecond
	maxBodySize    = 32 << 20
)

// Manifest describes the locales published for a project.
type Manifest struct {
	Project      string   `json:"project"`
	SourceLocale string   `json:"sourceLocale"`
	Locales      []string `json:"locales"`
}

// Client talks to the translation CDN.
type Client struct {
	baseURL string
	project string

	http    *http.Client
	store   cache.Store
	ttl     time.Duration
	retries int
	backoff time.Duration
	maxBody int64

	fallbackFs  afero.Fs
	fallbackDir string

	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCache caches successful responses in store for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.store = store
		c.ttl = ttl
	}
}

// WithRetries sets how many times a failed request is retried and the base
// delay between attempts. The delay grows linearly with the attempt number.
func WithRetries(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = backoff
	}
}

// WithFallback mirrors every successful response below dir on fs and reads
// it back when the CDN cannot be reached.
func WithFallback(fs afero.Fs, dir string) Option {
	return func(c *Client) {
		c.fallbackFs = fs
		c.fallbackDir = dir
	}
}

// WithLogger sets the logger used for retry and fallback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for project ("org/project") served below baseURL.
func New(baseURL, project string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("remote: base URL is required")
	}
	project = strings.Trim(project, "/")
	if project == "" {
		return nil, fmt.Errorf("remote: project is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		project: project,
		http:    &http.Client{Timeout: defaultTimeout},
		retries: defaultRetries,
		backoff: defaultBackoff,
		maxBody: maxBodySize,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Manifest fetches the project manifest.
func (c *Client) Manifest(ctx context.Context) (*Manifest, error) {
	var m Manifest
	err := c.fetch(ctx, "manifest.json", func(data []byte) error {
		m = Manifest{}
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decoding manifest: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Messages fetches the translation tree of locale.
func (c *Client) Messages(ctx context.Context, locale string) (tree.Tree, error) {
	name, err := NormalizeLocale(locale)
	if err != nil {
		return nil, err
	}
	var t tree.Tree
	err = c.fetch(ctx, name+".json", func(data []byte) error {
		parsed, err := tree.Parse(data, "json")
		if err != nil {
			return err
		}
		t = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NormalizeLocale validates a BCP 47 tag and returns its lower-case
// canonical form, which is how locale files are named on the CDN.
func NormalizeLocale(locale string) (string, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return strings.ToLower(tag.String()), nil
}

// fetch loads name and hands it to decode. Only payloads that decode are
// cached and mirrored locally; a payload that does not decode is treated like
// a failed download.
func (c *Client) fetch(ctx context.Context, name string, decode func([]byte) error) error {
	key := c.project + "/" + name

	if c.store != nil {
		data, found, err := c.store.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		case found:
			if err := decode(data); err == nil {
				c.logger.DebugContext(ctx, "cache hit", "key", key)
				return nil
			}
			c.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
			c.forget(ctx, key)
		}
	}

	data, err := c.download(ctx, name)
	if err == nil {
		if err = decode(data); err == nil {
			c.remember(ctx, key, name, data)
			return nil
		}
		err = fmt.Errorf("invalid response for %s: %w", key, err)
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}

	if data, ok := c.readFallback(name); ok {
		if ferr := decode(data); ferr == nil {
			c.logger.WarnContext(ctx, "using local copy of remote data", "resource", key, "error", err)
			return nil
		}
		c.logger.WarnContext(ctx, "local copy of remote data is invalid", "resource", key)
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, key, err)
}

func (c *Client) forget(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "cache delete failed", "key", key, "error", err)
	}
}

func (c *Client) download(ctx context.Context, name string) ([]byte, error) {
	url := c.baseURL + "/" + path.Join(c.project, name)

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.DebugContext(ctx, "retrying request", "url", url, "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		data, retry, err := c.get(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}
	return nil, lastErr
}

// get performs one request and reports whether a failure is worth retrying.
func (c *Client) get(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("GET %s: %s", url, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, true, fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, false, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, url, c.maxBody)
	}
	return data, false, nil
}

func (c *Client) remember(ctx context.Context, key, name string, data []byte) {
	if c.store != nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	if c.fallbackFs == nil {
		return
	}
	file := c.fallbackPath(name)
	if err := c.fallbackFs.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		c.logger.WarnContext(ctx, "creating local cache dir failed", "error", err)
		return
	}
	if err := afero.WriteFile(c.fallbackFs, file, data, 0o644); err != nil {
		c.logger.WarnContext(ctx, "writing local cache failed", "file", file, "error", err)
	}
}

func (c *Client) readFallback(name string) ([]byte, bool) {
	if c.fallbackFs == nil {
		return nil, false
	}
	data, err := afero.ReadFile(c.fallbackFs, c.fallbackPath(name))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Client) fallbackPath(name string) string {
	return filepath.Join(c.fallbackDir, filepath.FromSlash(c.project), name)
}
