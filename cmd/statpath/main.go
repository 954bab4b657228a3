// Command statpath serves coding-platform profile statistics over HTTP.
//
// Usage:
//
//	statpath -addr :8080
//	curl localhost:8080/v1/leetcode/alice
//	curl localhost:8080/v1/report/cf/tourist
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/codeGROOVE-dev/statpath/pkg/codechef"
	"github.com/codeGROOVE-dev/statpath/pkg/codeforces"
	"github.com/codeGROOVE-dev/statpath/pkg/duolingo"
	"github.com/codeGROOVE-dev/statpath/pkg/hackerrank"
	"github.com/codeGROOVE-dev/statpath/pkg/httpcache"
	"github.com/codeGROOVE-dev/statpath/pkg/leetcode"
	"github.com/codeGROOVE-dev/statpath/pkg/server"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	cacheTTL := flag.Duration("cache-ttl", 60*time.Second, "report cache time-to-live")
	rateLimit := flag.Int("rate-limit", 30, "requests allowed per client per window")
	rateWindow := flag.Duration("rate-window", 60*time.Second, "rate limit window")
	httpCacheTTL := flag.Duration("http-cache-ttl", 60*time.Second, "upstream HTTP cache time-to-live")
	noHTTPCache := flag.Bool("no-http-cache", false, "disable upstream HTTP caching")
	noBrowser := flag.Bool("no-browser", false, "disable the headless browser strategy")
	browserCookies := flag.Bool("browser-cookies", false, "read leetcode.com cookies from browser stores")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	var httpCache *httpcache.Cache
	if !*noHTTPCache {
		var err error
		httpCache, err = httpcache.New(*httpCacheTTL)
		if err != nil {
			logger.Warn("failed to initialize HTTP cache, continuing without", "error", err)
		} else {
			defer func() {
				if err := httpCache.Close(); err != nil {
					logger.Warn("failed to close HTTP cache", "error", err)
				}
			}()
			logger.Debug("HTTP cache initialized", "ttl", httpCacheTTL.String())
		}
	}

	fetchers, err := buildFetchers(ctx, logger, httpCache, *noBrowser, *browserCookies)
	if err != nil {
		logger.Error("failed to initialize fetchers", "error", err)
		os.Exit(1)
	}

	srv := server.New(server.Config{
		Logger:     logger,
		CacheTTL:   *cacheTTL,
		RateLimit:  *rateLimit,
		RateWindow: *rateWindow,
	}, fetchers)

	if err := srv.Run(ctx, *addr); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func buildFetchers(ctx context.Context, logger *slog.Logger, httpCache *httpcache.Cache, noBrowser, browserCookies bool) (server.Fetchers, error) {
	var cacheOptLC []leetcode.Option
	if httpCache != nil {
		cacheOptLC = append(cacheOptLC, leetcode.WithHTTPCache(httpCache))
	}
	cacheOptLC = append(cacheOptLC, leetcode.WithLogger(logger))
	if noBrowser {
		cacheOptLC = append(cacheOptLC, leetcode.WithoutBrowser())
	}
	if browserCookies {
		cacheOptLC = append(cacheOptLC, leetcode.WithBrowserCookies())
	}

	lc, err := leetcode.New(ctx, cacheOptLC...)
	if err != nil {
		return server.Fetchers{}, err
	}

	var cfOpts []codeforces.Option
	var ccOpts []codechef.Option
	var duoOpts []duolingo.Option
	var hrOpts []hackerrank.Option
	if httpCache != nil {
		cfOpts = append(cfOpts, codeforces.WithHTTPCache(httpCache))
		ccOpts = append(ccOpts, codechef.WithHTTPCache(httpCache))
		duoOpts = append(duoOpts, duolingo.WithHTTPCache(httpCache))
		hrOpts = append(hrOpts, hackerrank.WithHTTPCache(httpCache))
	}
	cfOpts = append(cfOpts, codeforces.WithLogger(logger))
	ccOpts = append(ccOpts, codechef.WithLogger(logger))
	duoOpts = append(duoOpts, duolingo.WithLogger(logger))
	hrOpts = append(hrOpts, hackerrank.WithLogger(logger))

	cf, err := codeforces.New(ctx, cfOpts...)
	if err != nil {
		return server.Fetchers{}, err
	}
	cc, err := codechef.New(ctx, ccOpts...)
	if err != nil {
		return server.Fetchers{}, err
	}
	duo, err := duolingo.New(ctx, duoOpts...)
	if err != nil {
		return server.Fetchers{}, err
	}
	hr, err := hackerrank.New(ctx, hrOpts...)
	if err != nil {
		return server.Fetchers{}, err
	}

	return server.Fetchers{
		LeetCode:   lc,
		Codeforces: cf,
		CodeChef:   cc,
		Duolingo:   duo,
		HackerRank: hr,
	}, nil
}
