// Package server exposes the platform fetchers over HTTP.
//
// Responses are cached per platform+username in a short-lived report cache,
// and all public endpoints sit behind a sliding-window rate limiter. Fetchers
// never fail outward, so handler error paths are limited to routing and
// throttling.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/statpath/pkg/ratelimit"
	"github.com/codeGROOVE-dev/statpath/pkg/report"
	"github.com/codeGROOVE-dev/statpath/pkg/ttlcache"
)

// Fetcher interfaces, one per platform, so tests can stub upstreams.
type (
	// LeetCodeFetcher produces LeetCode reports.
	LeetCodeFetcher interface {
		Fetch(ctx context.Context, username string) *report.LeetCode
	}
	// CodeforcesFetcher produces Codeforces reports.
	CodeforcesFetcher interface {
		Fetch(ctx context.Context, username string) *report.Codeforces
	}
	// CodeChefFetcher produces CodeChef reports.
	CodeChefFetcher interface {
		Fetch(ctx context.Context, username string) *report.CodeChef
	}
	// DuolingoFetcher produces Duolingo reports.
	DuolingoFetcher interface {
		Fetch(ctx context.Context, username string) *report.Duolingo
	}
	// HackerRankFetcher produces HackerRank reports.
	HackerRankFetcher interface {
		Fetch(ctx context.Context, username string) *report.HackerRank
	}
)

// Fetchers groups the per-platform clients the server routes to.
type Fetchers struct {
	LeetCode   LeetCodeFetcher
	Codeforces CodeforcesFetcher
	CodeChef   CodeChefFetcher
	Duolingo   DuolingoFetcher
	HackerRank HackerRankFetcher
}

// Config holds server tunables.
type Config struct {
	Logger     *slog.Logger
	CacheTTL   time.Duration
	RateLimit  int
	RateWindow time.Duration
}

// Server routes profile requests to platform fetchers.
type Server struct {
	logger   *slog.Logger
	cache    *ttlcache.Cache
	limiter  *ratelimit.Limiter
	fetchers Fetchers
	mux      *http.ServeMux
}

// platformAliases maps every accepted platform name, long or short, to its
// canonical form.
var platformAliases = map[string]string{
	"leetcode":   "leetcode",
	"lc":         "leetcode",
	"codeforces": "codeforces",
	"cf":         "codeforces",
	"codechef":   "codechef",
	"cc":         "codechef",
	"duolingo":   "duolingo",
	"duo":        "duolingo",
	"hackerrank": "hackerrank",
	"hr":         "hackerrank",
}

// cachePrefixes keeps report cache keys short and collision-free across
// platforms.
var cachePrefixes = map[string]string{
	"leetcode":   "lc",
	"codeforces": "cf",
	"codechef":   "cc",
	"duolingo":   "duo",
	"hackerrank": "hr",
}

// New creates a Server.
func New(cfg Config, fetchers Fetchers) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 30
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = 60 * time.Second
	}

	s := &Server{
		logger:   cfg.Logger,
		cache:    ttlcache.New(cfg.CacheTTL),
		limiter:  ratelimit.New(cfg.RateLimit, cfg.RateWindow),
		fetchers: fetchers,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /v1/{platform}/{username}", s.handlePlatform)
	s.mux.HandleFunc("GET /v1/report/{platform}/{username}", s.handleReport)
	s.mux.HandleFunc("POST /admin/clear_cache", s.handleClearCache)

	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.withLogging(s.withRateLimit(s.mux)))
}

// Run serves until ctx is cancelled or an interrupt arrives, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlatform(w http.ResponseWriter, r *http.Request) {
	rpt, err := s.fetchPlatform(r.Context(), r.PathValue("platform"), r.PathValue("username"))
	if err != nil {
		s.writePlatformError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rpt)
}

// handleReport serves the same data as handlePlatform wrapped in the report
// envelope.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	platform := r.PathValue("platform")
	username := r.PathValue("username")

	rpt, err := s.fetchPlatform(r.Context(), platform, username)
	if err != nil {
		s.writePlatformError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Envelope{
		Message: fmt.Sprintf("report for %s on %s", username, platformAliases[strings.ToLower(platform)]),
		Report:  rpt,
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	n := s.cache.Len()
	s.cache.Clear()
	s.logger.InfoContext(r.Context(), "report cache cleared", "entries", n)
	writeJSON(w, http.StatusOK, map[string]string{"cache": "cleared"})
}

// fetchPlatform resolves the platform alias, consults the report cache, and
// falls through to the fetcher on a miss.
func (s *Server) fetchPlatform(ctx context.Context, platform, username string) (any, error) {
	canonical, ok := platformAliases[strings.ToLower(platform)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", report.ErrUnknownPlatform, platform)
	}

	key := cachePrefixes[canonical] + ":" + username
	if cached, ok := s.cache.Get(key); ok {
		s.logger.DebugContext(ctx, "report cache hit", "key", key)
		return cached, nil
	}

	var rpt any
	switch canonical {
	case "leetcode":
		rpt = s.fetchers.LeetCode.Fetch(ctx, username)
	case "codeforces":
		rpt = s.fetchers.Codeforces.Fetch(ctx, username)
	case "codechef":
		rpt = s.fetchers.CodeChef.Fetch(ctx, username)
	case "duolingo":
		rpt = s.fetchers.Duolingo.Fetch(ctx, username)
	case "hackerrank":
		rpt = s.fetchers.HackerRank.Fetch(ctx, username)
	}

	s.cache.Set(key, rpt)
	return rpt, nil
}

func (s *Server) writePlatformError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, report.ErrUnknownPlatform) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("encode response", "error", err)
	}
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start),
			"client", clientID(r))
	})
}

// withRateLimit throttles per client. Health checks and admin calls bypass
// the limiter so operators are never locked out by probe traffic.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/admin/") {
			next.ServeHTTP(w, r)
			return
		}
		if !s.limiter.Admit(clientID(r)) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": fmt.Sprintf("Rate limit exceeded (%d requests per %s)",
					s.limiter.Limit(), s.limiter.Window()),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID identifies the caller for rate limiting, preferring the first
// forwarded address when the server sits behind a proxy.
func clientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
