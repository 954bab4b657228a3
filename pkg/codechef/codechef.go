// Package codechef fetches CodeChef user statistics by scraping the public
// profile page. CodeChef has no public API, so everything comes from HTML.
package codechef

import (
	"context"
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
	platform = "codechef"
	baseURL  = "https://www.codechef.com/users/"
)

var (
	usernamePattern = regexp.MustCompile(`(?i)codechef\.com/users/([a-zA-Z0-9_]+)`)

	globalRankPattern  = regexp.MustCompile(`Global Rank[^0-9]*([0-9]+)`)
	countryRankPattern = regexp.MustCompile(`Country Rank[^0-9]*([0-9]+)`)
	solvedPattern      = regexp.MustCompile(`Total Problems Solved:\s*([0-9]+)`)
	highestPattern     = regexp.MustCompile(`Highest Rating\s*([0-9]+)`)
)

// Match returns true if the URL is a CodeChef profile URL.
func Match(urlStr string) bool {
	return usernamePattern.MatchString(urlStr)
}

// ExtractUsername returns the username portion of a CodeChef profile URL.
func ExtractUsername(urlStr string) string {
	matches := usernamePattern.FindStringSubmatch(urlStr)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// Client fetches CodeChef profiles.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	baseURL    string
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

// New creates a CodeChef client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns the report for username. Scrape failures are absorbed into
// the unrated template.
func (c *Client) Fetch(ctx context.Context, username string) *report.CodeChef {
	rpt := report.NewCodeChef(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+username, http.NoBody)
	if err != nil {
		c.logger.DebugContext(ctx, "create request failed", "platform", platform,
			"username", username, "error", err)
		return rpt
	}
	httpcache.BrowserHeaders(req)

	body, err := httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		c.logger.InfoContext(ctx, "profile fetch failed", "platform", platform,
			"username", username, "error", err)
		return rpt
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		c.logger.DebugContext(ctx, "parse profile failed", "platform", platform,
			"username", username, "error", err)
		return rpt
	}

	c.parseProfile(doc, string(body), rpt)
	return rpt
}

func (c *Client) parseProfile(doc *goquery.Document, html string, rpt *report.CodeChef) {
	if name := strings.TrimSpace(doc.Find(".user-details-container .h2-style").First().Text()); name != "" {
		rpt.Name = name
	}

	rating := strings.TrimSpace(doc.Find(".rating-number").First().Text())
	rating = strings.TrimSuffix(rating, "?")
	if rating != "" {
		rpt.Rating = rating
		rpt.Stars = starsForRating(rating)
	}

	if m := highestPattern.FindStringSubmatch(html); len(m) > 1 {
		rpt.HighestRating = m[1]
	}
	if m := globalRankPattern.FindStringSubmatch(html); len(m) > 1 {
		rpt.GlobalRank = m[1]
	}
	if m := countryRankPattern.FindStringSubmatch(html); len(m) > 1 {
		rpt.CountryRank = m[1]
	}
	if m := solvedPattern.FindStringSubmatch(html); len(m) > 1 {
		rpt.ProblemsSolved = m[1]
	}

	if country := strings.TrimSpace(doc.Find(".user-country-name").First().Text()); country != "" {
		rpt.Country = country
	}
	doc.Find(".user-details li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if strings.HasPrefix(text, "Institution:") {
			rpt.Institution = strings.TrimSpace(strings.TrimPrefix(text, "Institution:"))
		}
	})
}

// starsForRating maps a numeric rating to the CodeChef star band.
func starsForRating(rating string) string {
	n := 0
	for _, r := range rating {
		if r < '0' || r > '9' {
			return "Unrated"
		}
		n = n*10 + int(r-'0')
	}
	switch {
	case n >= 3000:
		return "7★"
	case n >= 2500:
		return "6★"
	case n >= 2200:
		return "5★"
	case n >= 2000:
		return "4★"
	case n >= 1800:
		return "3★"
	case n >= 1600:
		return "2★"
	case n >= 1400:
		return "1★"
	default:
		return "Unrated"
	}
}
