// Package duolingo fetches Duolingo user statistics from the unofficial
// users API, falling back to the public profile page for the avatar.
package duolingo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/statpath/pkg/htmlutil"
	"github.com/codeGROOVE-dev/statpath/pkg/httpcache"
	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

const (
	platform   = "duolingo"
	apiBase    = "https://www.duolingo.com/2017-06-30/users"
	profileURL = "https://www.duolingo.com/profile/"
)

var usernamePattern = regexp.MustCompile(`(?i)duolingo\.com/profile/([a-zA-Z0-9_.-]+)`)

// Match returns true if the URL is a Duolingo profile URL.
func Match(urlStr string) bool {
	return usernamePattern.MatchString(urlStr)
}

// ExtractUsername returns the username portion of a Duolingo profile URL.
func ExtractUsername(urlStr string) string {
	matches := usernamePattern.FindStringSubmatch(urlStr)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// Client fetches Duolingo profiles.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	apiBase    string
	profileURL string
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

// New creates a Duolingo client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		apiBase:    apiBase,
		profileURL: profileURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// apiUser is the subset of the users API response the report needs.
type apiUser struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	Streak       int    `json:"streak"`
	TotalXP      int    `json:"totalXp"`
	Picture      string `json:"picture"`
	CreationDate int64  `json:"creationDate"`
	FromLanguage string `json:"fromLanguage"`
	Learning     string `json:"learningLanguage"`
	Bio          string `json:"bio"`
	Courses      []struct {
		Title  string `json:"title"`
		XP     int    `json:"xp"`
		Crowns int    `json:"crowns"`
	} `json:"courses"`
}

// Fetch returns the report for username. API failures fall back to scraping
// the profile page, which at least yields the avatar.
func (c *Client) Fetch(ctx context.Context, username string) *report.Duolingo {
	rpt := report.NewDuolingo(username)

	if err := c.fillFromAPI(ctx, username, rpt); err != nil {
		c.logger.InfoContext(ctx, "users api failed", "platform", platform,
			"username", username, "error", err)
	}
	if rpt.AvatarURL == "" {
		c.fillAvatarFromPage(ctx, username, rpt)
	}
	return rpt
}

func (c *Client) fillFromAPI(ctx context.Context, username string, rpt *report.Duolingo) error {
	u := c.apiBase + "?" + url.Values{"username": {username}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
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
		Users []apiUser `json:"users"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode users response: %w", err)
	}
	if len(resp.Users) == 0 {
		return report.ErrProfileNotFound
	}

	user := resp.Users[0]
	rpt.Name = user.Name
	rpt.Streak = user.Streak
	rpt.TotalXP = user.TotalXP
	rpt.Bio = user.Bio
	rpt.CreationDate = user.CreationDate
	rpt.FromLanguage = user.FromLanguage
	rpt.LearningLanguage = user.Learning
	if user.Picture != "" {
		rpt.AvatarURL = normalizeAvatar(user.Picture)
	}

	for _, course := range user.Courses {
		rpt.Languages = append(rpt.Languages, report.Language{
			Language: course.Title,
			XP:       course.XP,
			Crowns:   course.Crowns,
		})
	}
	return nil
}

func (c *Client) fillAvatarFromPage(ctx context.Context, username string, rpt *report.Duolingo) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL+username, http.NoBody)
	if err != nil {
		return
	}
	httpcache.BrowserHeaders(req)

	body, err := httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		c.logger.DebugContext(ctx, "profile page fetch failed", "platform", platform,
			"username", username, "error", err)
		return
	}
	if img := htmlutil.OGImage(string(body)); img != "" {
		rpt.AvatarURL = normalizeAvatar(img)
	}
}

// normalizeAvatar completes protocol-relative picture URLs and appends the
// size suffix Duolingo expects.
func normalizeAvatar(pic string) string {
	if strings.HasPrefix(pic, "//") {
		pic = "https:" + pic
	}
	if strings.Contains(pic, "duolingo.com/avatars/") && !strings.Contains(pic, "/xlarge") {
		pic += "/xlarge"
	}
	return pic
}
