// Package codeforces fetches Codeforces user statistics via the official API.
package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/statpath/pkg/httpcache"
	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

const (
	platform   = "codeforces"
	apiBase    = "https://codeforces.com/api"
	maxSubmits = 1000
)

var usernamePattern = regexp.MustCompile(`(?i)codeforces\.com/profile/([a-zA-Z0-9_.-]+)`)

// Match returns true if the URL is a Codeforces profile URL.
func Match(urlStr string) bool {
	return usernamePattern.MatchString(urlStr)
}

// ExtractUsername returns the handle portion of a Codeforces profile URL.
func ExtractUsername(urlStr string) string {
	matches := usernamePattern.FindStringSubmatch(urlStr)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// Client fetches Codeforces profiles.
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

// New creates a Codeforces client.
func New(_ context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.Default(),
		baseURL:    apiBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// apiResult is the common Codeforces API envelope.
type apiResult struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

// Fetch returns the report for handle. The user.info call decides existence;
// rating history and submissions are best-effort extras whose failures only
// log, so a partially degraded upstream still yields the core profile.
func (c *Client) Fetch(ctx context.Context, handle string) *report.Codeforces {
	rpt := report.NewCodeforces(handle)

	if err := c.fillInfo(ctx, handle, rpt); err != nil {
		c.logger.InfoContext(ctx, "profile lookup failed", "platform", platform,
			"username", handle, "error", err)
		return rpt
	}

	if err := c.fillRating(ctx, handle, rpt); err != nil {
		c.logger.DebugContext(ctx, "rating history unavailable", "platform", platform,
			"username", handle, "error", err)
	}
	if err := c.fillSolved(ctx, handle, rpt); err != nil {
		c.logger.DebugContext(ctx, "submission history unavailable", "platform", platform,
			"username", handle, "error", err)
	}

	return rpt
}

func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + "/" + method + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
	if err != nil {
		return nil, err
	}

	var env apiResult
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if env.Status != "OK" {
		return nil, fmt.Errorf("%s: %s", method, env.Comment)
	}
	return env.Result, nil
}

func (c *Client) fillInfo(ctx context.Context, handle string, rpt *report.Codeforces) error {
	result, err := c.call(ctx, "user.info", url.Values{"handles": {handle}})
	if err != nil {
		return err
	}

	var users []struct {
		Handle                  string `json:"handle"`
		Rating                  int    `json:"rating"`
		MaxRating               int    `json:"maxRating"`
		Rank                    string `json:"rank"`
		MaxRank                 string `json:"maxRank"`
		Organization            string `json:"organization"`
		Contribution            int    `json:"contribution"`
		FriendOfCount           int    `json:"friendOfCount"`
		FirstName               string `json:"firstName"`
		LastName                string `json:"lastName"`
		Country                 string `json:"country"`
		City                    string `json:"city"`
		TitlePhoto              string `json:"titlePhoto"`
		RegistrationTimeSeconds int64  `json:"registrationTimeSeconds"`
		LastOnlineTimeSeconds   int64  `json:"lastOnlineTimeSeconds"`
	}
	if err := json.Unmarshal(result, &users); err != nil {
		return fmt.Errorf("decode user list: %w", err)
	}
	if len(users) == 0 {
		return report.ErrProfileNotFound
	}

	u := users[0]
	rpt.Rating = u.Rating
	rpt.MaxRating = u.MaxRating
	if u.Rank != "" {
		rpt.Rank = u.Rank
	}
	if u.MaxRank != "" {
		rpt.MaxRank = u.MaxRank
	}
	rpt.Organization = u.Organization
	rpt.Contribution = u.Contribution
	rpt.FriendOfCount = u.FriendOfCount
	rpt.FirstName = u.FirstName
	rpt.LastName = u.LastName
	rpt.Country = u.Country
	rpt.City = u.City
	rpt.RegistrationTime = u.RegistrationTimeSeconds
	rpt.LastOnlineTime = u.LastOnlineTimeSeconds
	if u.TitlePhoto != "" {
		rpt.Avatar = u.TitlePhoto
	}
	return nil
}

func (c *Client) fillRating(ctx context.Context, handle string, rpt *report.Codeforces) error {
	result, err := c.call(ctx, "user.rating", url.Values{"handle": {handle}})
	if err != nil {
		return err
	}

	var contests []struct {
		ContestID   int    `json:"contestId"`
		ContestName string `json:"contestName"`
		Rank        int    `json:"rank"`
		OldRating   int    `json:"oldRating"`
		NewRating   int    `json:"newRating"`
	}
	if err := json.Unmarshal(result, &contests); err != nil {
		return fmt.Errorf("decode rating history: %w", err)
	}

	rpt.TotalContests = len(contests)
	if len(contests) == 0 {
		return nil
	}

	totalChange := 0
	for _, ct := range contests {
		totalChange += ct.NewRating - ct.OldRating
	}
	rpt.AvgChange = math.Round(float64(totalChange)/float64(len(contests))*100) / 100

	last := contests[len(contests)-1]
	rpt.LastContest = &report.Contest{
		ContestID:    last.ContestID,
		ContestName:  last.ContestName,
		Rank:         last.Rank,
		RatingChange: last.NewRating - last.OldRating,
		NewRating:    last.NewRating,
		OldRating:    last.OldRating,
	}
	return nil
}

// fillSolved counts distinct accepted problems over the most recent
// submissions. Problems without a contest id (gym uploads) key by name.
func (c *Client) fillSolved(ctx context.Context, handle string, rpt *report.Codeforces) error {
	result, err := c.call(ctx, "user.status", url.Values{
		"handle": {handle},
		"from":   {"1"},
		"count":  {fmt.Sprint(maxSubmits)},
	})
	if err != nil {
		return err
	}

	var submissions []struct {
		Verdict string `json:"verdict"`
		Problem struct {
			ContestID int    `json:"contestId"`
			Index     string `json:"index"`
			Name      string `json:"name"`
		} `json:"problem"`
	}
	if err := json.Unmarshal(result, &submissions); err != nil {
		return fmt.Errorf("decode submissions: %w", err)
	}

	solved := make(map[string]struct{})
	for _, sub := range submissions {
		if sub.Verdict != "OK" {
			continue
		}
		key := fmt.Sprintf("%d%s", sub.Problem.ContestID, sub.Problem.Index)
		if sub.Problem.ContestID == 0 {
			key = strings.ToLower(sub.Problem.Name)
		}
		solved[key] = struct{}{}
	}
	rpt.ProblemsSolved = len(solved)
	return nil
}
