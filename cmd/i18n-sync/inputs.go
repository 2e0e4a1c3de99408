package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/better-i18n/i18n-sync/cache"
	cacheredis "github.com/better-i18n/i18n-sync/cache/redis"
	"github.com/better-i18n/i18n-sync/reconcile"
	"github.com/better-i18n/i18n-sync/remote"
	"github.com/better-i18n/i18n-sync/scanner"
	"github.com/better-i18n/i18n-sync/tree"
	"github.com/better-i18n/i18n-sync/usage"
)

const (
	retryBackoff   = 500 * time.Millisecond
	redisKeyPrefix = "i18n-sync:"
)

// loadUsages reads the usage records file when one is configured and runs
// the built-in scanner otherwise.
func (a *app) loadUsages(ctx context.Context) ([]usage.Record, error) {
	if a.cfg.UsagesFile != "" {
		path := a.path(a.cfg.UsagesFile)
		records, err := usage.Load(a.fs, path)
		if err != nil {
			return nil, err
		}
		a.logger.DebugContext(ctx, "loaded usage records", "file", path, "records", len(records))
		return records, nil
	}

	s := scanner.New(a.fs, a.base,
		scanner.WithExtensions(a.cfg.Extensions...),
		scanner.WithLogger(a.logger),
	)
	return s.Scan(ctx, a.cfg.SourceDirs...)
}

// loadTree reads the tree file when one is configured and fetches the
// configured locale from the CDN otherwise.
func (a *app) loadTree(ctx context.Context) (tree.Tree, error) {
	if a.cfg.TreeFile != "" {
		return tree.Load(a.fs, a.path(a.cfg.TreeFile))
	}
	return a.fetchMessages(ctx, a.cfg.Locale)
}

// fetchMessages downloads the tree of locale for the configured project.
func (a *app) fetchMessages(ctx context.Context, locale string) (tree.Tree, error) {
	if err := a.cfg.RequireRemote(); err != nil {
		return nil, err
	}

	store := a.openCache(ctx)
	defer store.Close()

	hc := a.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: a.cfg.RequestTimeout}
	}
	client, err := remote.New(a.cfg.CDNURL, a.cfg.Project,
		remote.WithHTTPClient(hc),
		remote.WithCache(store, a.cfg.CacheTTL),
		remote.WithRetries(*a.cfg.Retries, retryBackoff),
		remote.WithFallback(a.fs, a.path(a.cfg.CacheDir)),
		remote.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	a.checkLocale(ctx, client, locale)

	t, err := client.Messages(ctx, locale)
	if err != nil {
		return nil, fmt.Errorf("fetching %s messages for %s: %w", locale, a.cfg.Project, err)
	}
	return t, nil
}

// checkLocale warns when the configured locale is not published for the
// project. A missing manifest is not an error.
func (a *app) checkLocale(ctx context.Context, client *remote.Client, locale string) {
	m, err := client.Manifest(ctx)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			a.logger.DebugContext(ctx, "project has no manifest", "project", a.cfg.Project)
		} else {
			a.logger.WarnContext(ctx, "fetching manifest failed", "project", a.cfg.Project, "error", err)
		}
		return
	}
	want, err := remote.NormalizeLocale(locale)
	if err != nil {
		return
	}
	for _, l := range m.Locales {
		if n, err := remote.NormalizeLocale(l); err == nil && n == want {
			return
		}
	}
	a.logger.WarnContext(ctx, "locale is not published for project",
		"locale", locale, "project", a.cfg.Project, "published", m.Locales)
}

// openCache connects to Redis when an address is configured. Without one, or
// when Redis is unreachable, responses are cached in memory for this run.
func (a *app) openCache(ctx context.Context) cache.Store {
	if a.cfg.RedisAddr == "" {
		return cache.NewInMemory()
	}
	store, err := cacheredis.New(ctx, cacheredis.Options{
		Addr:      a.cfg.RedisAddr,
		KeyPrefix: redisKeyPrefix,
	})
	if err != nil {
		a.logger.WarnContext(ctx, "redis unavailable, caching in memory", "addr", a.cfg.RedisAddr, "error", err)
		return cache.NewInMemory()
	}
	return store
}

// reconcile runs the engine over the configured inputs and logs the outcome.
func (a *app) reconcile(ctx context.Context) (*reconcile.Report, error) {
	records, err := a.loadUsages(ctx)
	if err != nil {
		return nil, err
	}
	remoteTree, err := a.loadTree(ctx)
	if err != nil {
		return nil, err
	}

	report := reconcile.Reconcile(records, remoteTree,
		reconcile.WithHoldDynamicForReview(a.cfg.HoldDynamicForReview))

	m := report.Metrics
	a.logger.InfoContext(ctx, "reconciled",
		"usages", m.Usages,
		"local", m.LocalKeys,
		"remote", m.RemoteKeys,
		"missing", m.Missing,
		"unused", m.Unused,
	)
	if !report.Invariants.LocalBalanced {
		a.logger.ErrorContext(ctx, "invariant failed: local keys != matched + missing",
			"local", m.LocalKeys, "matched", m.Matched, "missing", m.Missing)
	}
	if !report.Invariants.RemoteBalanced {
		a.logger.ErrorContext(ctx, "invariant failed: remote keys != matched + unused + review",
			"remote", m.RemoteKeys, "matched", m.Matched, "unused", m.Unused, "review", m.DynamicReview)
	}
	for _, f := range report.Fuzzy {
		if f.Ambiguous {
			a.logger.DebugContext(ctx, "ambiguous fragment", "fragment", f.Fragment, "matches", f.Matches)
		}
	}
	return report, nil
}
