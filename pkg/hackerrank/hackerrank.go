// Package hackerrank fetches HackerRank user profiles. The REST profile API
// is tried first; the public page fills whatever the API withheld.
package hackerrank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/codeGROOVE-dev/statpath/pkg/httpcache"
	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

const (
	platform = "hackerrank"
	apiBase  = "https://www.hackerrank.com/rest/contests/master/hackers/"
	pageBase = "https://www.hackerrank.com/profile/"
)

var usernamePattern = regexp.MustCompile(`(?i)hackerrank\.com/(?:profile/)?([a-zA-Z0-9_]+)`)

// Match returns true if the URL is a HackerRank profile URL.
func Match(urlStr string) bool {
	lower := strings.ToLower(urlStr)
	if !strings.Contains(lower, "hackerrank.com/") {
		return false
	}
	for _, ex := range []string{"/challenges/", "/contests/", "/domains/", "/leaderboard"} {
		if strings.Contains(lower, ex) {
			return false
		}
	}
	return usernamePattern.MatchString(urlStr)
}

// ExtractUsername returns the username portion of a HackerRank profile URL.
func ExtractUsername(urlStr string) string {
	matches := usernamePattern.FindStringSubmatch(urlStr)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// Client fetches HackerRank profiles.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	apiBase    string
	pageBase   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(cache httpcache.Cacher) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a HackerRank client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		apiBase:    apiBase,
		pageBase:   pageBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns the report for username. Both sources are best-effort; the
// template is returned unchanged when neither yields anything.
func (c *Client) Fetch(ctx context.Context, username string) *report.HackerRank {
	rpt := report.NewHackerRank(username)

	if err := c.fillFromAPI(ctx, username, rpt); err != nil {
		c.logger.InfoContext(ctx, "profile api failed", "platform", platform,
			"username", username, "error", err)
	}
	if err := c.fillFromPage(ctx, username, rpt); err != nil {
		c.logger.DebugContext(ctx, "profile page scrape failed", "platform", platform,
			"username", username, "error", err)
	}
	return rpt
}

func (c *Client) fillFromAPI(ctx context.Context, username string, rpt *report.HackerRank) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+username+"/profile", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	httpcache.BrowserHeaders(req)

	body, err := httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		return err
	}

	var resp struct {
		Model struct {
			Name           string `json:"name"`
			ShortBio       string `json:"short_bio"`
			Country        string `json:"country"`
			Avatar         string `json:"avatar"`
			FollowersCount int    `json:"followers_count"`
			FollowingCount int    `json:"following_count"`
			GithubURL      string `json:"github_url"`
			LinkedinURL    string `json:"linkedin_url"`
			TwitterURL     string `json:"twitter_url"`
			Website        string `json:"website"`
		} `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode profile response: %w", err)
	}

	m := resp.Model
	rpt.FullName = m.Name
	rpt.Bio = m.ShortBio
	rpt.Country = m.Country
	rpt.ProfileImage = m.Avatar
	rpt.FollowersCount = m.FollowersCount
	rpt.FollowingCount = m.FollowingCount
	rpt.SocialLinks = report.SocialLinks{
		GitHub:   m.GithubURL,
		LinkedIn: m.LinkedinURL,
		Twitter:  m.TwitterURL,
		Website:  m.Website,
	}
	return nil
}

func (c *Client) fillFromPage(ctx context.Context, username string, rpt *report.HackerRank) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageBase+username, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpcache.BrowserHeaders(req)

	body, err := httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("parse profile page: %w", err)
	}

	doc.Find(".badge-title").Each(func(_ int, sel *goquery.Selection) {
		if badge := strings.TrimSpace(sel.Text()); badge != "" {
			rpt.Badges = append(rpt.Badges, badge)
		}
	})
	doc.Find(".profile-skill, .skill-name").Each(func(_ int, sel *goquery.Selection) {
		if skill := strings.TrimSpace(sel.Text()); skill != "" {
			rpt.Skills = append(rpt.Skills, skill)
		}
	})

	if rpt.FullName == "" {
		rpt.FullName = strings.TrimSpace(doc.Find(".profile-heading, h1.profile-title").First().Text())
	}
	return nil
}
