// Package leetcode fetches LeetCode user statistics.
//
// LeetCode has no stable unauthenticated API, so the package reconciles
// several acquisition techniques behind one call: a headless browser that
// intercepts the profile page's own GraphQL traffic, direct GraphQL queries,
// a community statistics API, raw HTML scraping, and a list of mirror
// services. Strategies run in order until one produces a validated report;
// callers always receive a structurally complete result.
package leetcode

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/statpath/pkg/auth"
	"github.com/codeGROOVE-dev/statpath/pkg/httpcache"
	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

const platform = "leetcode"

var usernamePattern = regexp.MustCompile(`(?i)leetcode\.com/(?:u/)?([a-zA-Z0-9_-]+)`)

// Match returns true if the URL is a LeetCode profile URL.
func Match(urlStr string) bool {
	lower := strings.ToLower(urlStr)
	if !strings.Contains(lower, "leetcode.com/") {
		return false
	}
	// Exclude non-profile paths
	excluded := []string{"/problems/", "/contest/", "/discuss/", "/playground/", "/explore/", "/study-plan/"}
	for _, ex := range excluded {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	return usernamePattern.MatchString(urlStr)
}

// ExtractUsername returns the username portion of a LeetCode profile URL.
func ExtractUsername(urlStr string) string {
	matches := usernamePattern.FindStringSubmatch(urlStr)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// Client runs the LeetCode acquisition cascade.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	cookies    map[string]string
	strategies []strategy
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cache          httpcache.Cacher
	logger         *slog.Logger
	cookies        map[string]string
	browserCookies bool
	noBrowser      bool
}

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(httpCache httpcache.Cacher) Option {
	return func(c *config) { c.cache = httpCache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCookies sets explicit leetcode.com cookie values for the GraphQL strategy.
func WithCookies(cookies map[string]string) Option {
	return func(c *config) { c.cookies = cookies }
}

// WithBrowserCookies enables reading leetcode.com cookies from browser stores.
func WithBrowserCookies() Option {
	return func(c *config) { c.browserCookies = true }
}

// WithoutBrowser disables the headless browser strategy even when a Chrome
// binary is installed.
func WithoutBrowser() Option {
	return func(c *config) { c.noBrowser = true }
}

// New creates a LeetCode client. The strategy list is fixed at construction:
// the browser strategy is included only when a Chrome binary is found, so the
// cascade logic is identical whether or not that capability is available.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	cookies := cfg.cookies
	if cookies == nil {
		cookies = auth.Cookies(ctx, cfg.browserCookies, cfg.logger)
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cfg.cache,
		logger:     cfg.logger,
		cookies:    cookies,
	}

	if !cfg.noBrowser && browserAvailable() {
		c.strategies = append(c.strategies, &browserStrategy{c: c})
	}
	c.strategies = append(c.strategies,
		&graphqlStrategy{c: c},
		&statsAPIStrategy{c: c},
		&htmlStrategy{c: c},
		&mirrorStrategy{c: c, bases: mirrorBases},
	)

	return c, nil
}

// Fetch runs the strategy cascade for username and always returns a complete
// report. Upstream failures never propagate: a strategy that errors, times
// out, or returns garbage is skipped, and exhaustion yields the degraded
// template with an explanation of what was (not) found.
//
// Strategies are ordered richest-first. A strategy that parses but fails its
// validity check is retained as a best-effort candidate; later partial
// results only fill fields the candidate lacks (first to set a field wins).
func (c *Client) Fetch(ctx context.Context, username string) *report.LeetCode {
	var best *report.LeetCode

	for _, s := range c.strategies {
		sctx, cancel := context.WithTimeout(ctx, s.timeout())
		raw, err := s.attempt(sctx, username)
		cancel()
		if err != nil {
			c.logger.DebugContext(ctx, "strategy failed", "platform", platform,
				"strategy", s.name(), "username", username, "error", err)
			continue
		}

		cand := extract(normalize(raw), username)
		if s.valid(cand) {
			c.logger.InfoContext(ctx, "strategy succeeded", "platform", platform,
				"strategy", s.name(), "username", username, "totalSolved", cand.TotalSolved)
			return cand
		}

		c.logger.DebugContext(ctx, "strategy returned partial data", "platform", platform,
			"strategy", s.name(), "username", username)
		if best == nil {
			best = cand
		} else {
			mergeMissing(best, cand)
		}
	}

	if best != nil {
		refreshDegradedMessage(best)
		return best
	}

	rpt := report.NewLeetCode(username)
	msg := report.MsgProfileNotFound
	rpt.ErrorMessage = &msg
	return rpt
}

// mergeMissing copies fields from src into dst where dst has no value yet.
// Earlier strategies win; a later attempt can only fill gaps.
func mergeMissing(dst, src *report.LeetCode) {
	if dst.Ranking == nil {
		dst.Ranking = src.Ranking
	}
	if dst.Reputation == 0 {
		dst.Reputation = src.Reputation
	}
	if dst.ContributionPoints == 0 {
		dst.ContributionPoints = src.ContributionPoints
	}
	if dst.AcceptanceRate == 0 {
		dst.AcceptanceRate = src.AcceptanceRate
	}
	if dst.Streak == 0 {
		dst.Streak = src.Streak
	}
	if dst.TotalActiveDays == 0 {
		dst.TotalActiveDays = src.TotalActiveDays
	}
	if len(dst.SubmissionCalendar) == 0 && len(src.SubmissionCalendar) > 0 {
		dst.SubmissionCalendar = src.SubmissionCalendar
	}
}

// refreshDegradedMessage recomputes the degraded message after merges, since a
// later strategy may have supplied the ranking or calendar that distinguishes
// "statistics withheld" from "profile not found".
func refreshDegradedMessage(rpt *report.LeetCode) {
	if rpt.HasStats() {
		rpt.Error = false
		rpt.ErrorMessage = nil
		return
	}
	rpt.Error = true
	msg := report.MsgProfileNotFound
	if rpt.HasProfileSignal() {
		msg = report.MsgStatsUnavailable
	}
	rpt.ErrorMessage = &msg
}
