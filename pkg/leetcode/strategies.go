package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/codeGROOVE-dev/statpath/pkg/htmlutil"
	"github.com/codeGROOVE-dev/statpath/pkg/httpcache"
	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

const (
	graphqlURL   = "https://leetcode.com/graphql"
	statsAPIBase = "https://leetcode-stats-api.herokuapp.com"
)

// graphqlQuery is the primary profile query, matching what leetcode.com's own
// frontend requests.
const graphqlQuery = `query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile { ranking reputation postViewCount }
    submitStatsGlobal { acSubmissionNum { difficulty count submissions } }
    submissionCalendar
    userCalendar { streak totalActiveDays }
  }
  userContestRanking(username: $username) { attendedContestsCount rating globalRanking }
}`

// graphqlQueryAlt aliases submitStats for deployments that reject the
// submitStatsGlobal field name.
const graphqlQueryAlt = `query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile { ranking reputation postViewCount }
    submitStats: submitStatsGlobal { acSubmissionNum { difficulty count submissions } }
    submissionCalendar
  }
}`

// mirrorBases are community-run LeetCode stats mirrors, tried in order. The
// stats API has its own dedicated strategy and is not repeated here.
var mirrorBases = []string{
	"https://alfa-leetcode-api.onrender.com",
	"https://leetcode-api-faisalshohag.vercel.app",
	"https://leetcode-api.faisal.sh",
}

// graphqlStrategy queries the official GraphQL endpoint directly. It is the
// cheapest rich source but the most likely to be blocked without a session.
type graphqlStrategy struct {
	c *Client
}

func (*graphqlStrategy) name() string           { return "graphql" }
func (*graphqlStrategy) timeout() time.Duration { return graphqlTimeout }

func (s *graphqlStrategy) valid(rpt *report.LeetCode) bool { return rpt.HasStats() }

func (s *graphqlStrategy) attempt(ctx context.Context, username string) (rawData, error) {
	var lastErr error
	for _, query := range []string{graphqlQuery, graphqlQueryAlt} {
		raw, err := s.post(ctx, username, query)
		if err != nil {
			lastErr = err
			continue
		}
		return raw, nil
	}
	return nil, lastErr
}

func (s *graphqlStrategy) post(ctx context.Context, username, query string) (rawData, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": map[string]string{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	httpcache.BrowserHeaders(req)
	req.Header.Set("Origin", "https://leetcode.com")
	req.Header.Set("Referer", "https://leetcode.com/"+username+"/")

	csrf := "fetch"
	for name, value := range s.c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
		if name == "csrftoken" {
			csrf = value
		}
	}
	req.Header.Set("x-csrftoken", csrf)

	// POST bodies differ per user and per query, so the URL alone is not a
	// sufficient cache identity.
	key := graphqlURL + "|" + username + "|" + query
	body, err := httpcache.FetchURLKeyed(ctx, s.c.cache, s.c.httpClient, req, key, s.c.logger)
	if err != nil {
		return nil, err
	}

	var raw rawData
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if errs, ok := raw["errors"].([]any); ok && len(errs) > 0 {
		return nil, fmt.Errorf("graphql errors: %v", errs[0])
	}
	if normalize(raw)["matchedUser"] == nil {
		return nil, errNoUser
	}
	return raw, nil
}

// statsAPIStrategy queries a community statistics API that serves flat,
// pre-aggregated numbers.
type statsAPIStrategy struct {
	c       *Client
	baseURL string
}

func (*statsAPIStrategy) name() string           { return "statsapi" }
func (*statsAPIStrategy) timeout() time.Duration { return statsAPITimeout }

func (s *statsAPIStrategy) valid(rpt *report.LeetCode) bool { return rpt.HasStats() }

func (s *statsAPIStrategy) attempt(ctx context.Context, username string) (rawData, error) {
	base := s.baseURL
	if base == "" {
		base = statsAPIBase
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+username, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := httpcache.FetchURL(ctx, s.c.cache, s.c.httpClient, req, s.c.logger)
	if err != nil {
		return nil, err
	}

	var flat map[string]any
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}
	if status, _ := flat["status"].(string); status != "success" {
		return nil, fmt.Errorf("stats api status %q", flat["status"])
	}
	return synthesizeFlat(username, flat), nil
}

// synthesizeFlat rebuilds the canonical matchedUser shape from a flat stats
// payload so the shared extractor handles both forms identically.
func synthesizeFlat(username string, flat map[string]any) rawData {
	rows := []any{
		map[string]any{"difficulty": "All", "count": flat["totalSolved"]},
		map[string]any{"difficulty": "Easy", "count": flat["easySolved"]},
		map[string]any{"difficulty": "Medium", "count": flat["mediumSolved"]},
		map[string]any{"difficulty": "Hard", "count": flat["hardSolved"]},
	}
	mu := map[string]any{
		"username":          username,
		"submitStatsGlobal": map[string]any{"acSubmissionNum": rows},
		"profile": map[string]any{
			"ranking":       flat["ranking"],
			"reputation":    flat["reputation"],
			"postViewCount": flat["contributionPoints"],
		},
	}
	if cal := flat["submissionCalendar"]; cal != nil {
		mu["submissionCalendar"] = cal
	}
	out := rawData{"matchedUser": mu}
	if ar := flat["acceptanceRate"]; ar != nil {
		out["acceptanceRate"] = ar
	}
	return out
}

// htmlStrategy scrapes the public profile page for the embedded state blobs
// the frontend renders from.
type htmlStrategy struct {
	c       *Client
	baseURL string
}

func (*htmlStrategy) name() string           { return "html" }
func (*htmlStrategy) timeout() time.Duration { return htmlTimeout }

func (s *htmlStrategy) valid(rpt *report.LeetCode) bool { return rpt.HasStats() }

func (s *htmlStrategy) attempt(ctx context.Context, username string) (rawData, error) {
	base := s.baseURL
	if base == "" {
		base = "https://leetcode.com"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+username+"/", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpcache.BrowserHeaders(req)

	body, err := httpcache.FetchURL(ctx, s.c.cache, s.c.httpClient, req, s.c.logger)
	if err != nil {
		return nil, err
	}
	html := string(body)
	if htmlutil.IsNotFound(html) {
		return nil, errNoUser
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse profile html: %w", err)
	}

	var found rawData
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		if id, _ := sel.Attr("id"); id == "__NEXT_DATA__" {
			if raw := parseNextData(text); raw != nil {
				found = raw
				return false
			}
		}
		if strings.Contains(text, `"matchedUser"`) {
			if blob := htmlutil.BraceJSON(text, `"matchedUser"`); blob != "" {
				var mu map[string]any
				if json.Unmarshal([]byte(blob), &mu) == nil && len(mu) > 0 {
					found = rawData{"matchedUser": mu}
					return false
				}
			}
		}
		return true
	})

	if found == nil {
		return nil, errNoUser
	}
	return found, nil
}

// parseNextData decodes a __NEXT_DATA__ script body and digs the user object
// out of the dehydrated react-query state.
func parseNextData(text string) rawData {
	var state map[string]any
	if err := json.Unmarshal([]byte(text), &state); err != nil {
		blob := htmlutil.BraceJSON(text, "")
		if blob == "" || json.Unmarshal([]byte(blob), &state) != nil {
			return nil
		}
	}
	return dehydratedUser(state)
}

// dehydratedUser walks props.pageProps.dehydratedState.queries[].state.data
// looking for a payload that normalizes to a matched user.
func dehydratedUser(state map[string]any) rawData {
	props := asMap(state["props"])
	pageProps := asMap(props["pageProps"])
	dehydrated := asMap(pageProps["dehydratedState"])
	queries, _ := dehydrated["queries"].([]any)

	for _, q := range queries {
		qm := asMap(q)
		if qm == nil {
			continue
		}
		data := asMap(asMap(qm["state"])["data"])
		if data == nil {
			continue
		}
		if normalize(data)["matchedUser"] != nil {
			return data
		}
	}
	return nil
}

// mirrorStrategy walks community mirror services until one answers. Mirrors
// come and go, so each gets a short individual deadline inside the overall
// strategy window.
type mirrorStrategy struct {
	c     *Client
	bases []string
}

func (*mirrorStrategy) name() string           { return "mirrors" }
func (*mirrorStrategy) timeout() time.Duration { return mirrorTimeout }

func (s *mirrorStrategy) valid(rpt *report.LeetCode) bool { return rpt.HasStats() }

func (s *mirrorStrategy) attempt(ctx context.Context, username string) (rawData, error) {
	var lastErr error = errNoUser
	for _, base := range s.bases {
		raw, err := s.tryMirror(ctx, base, username)
		if err != nil {
			s.c.logger.DebugContext(ctx, "mirror failed", "platform", platform,
				"mirror", base, "username", username, "error", err)
			lastErr = err
			continue
		}
		return raw, nil
	}
	return nil, lastErr
}

func (s *mirrorStrategy) tryMirror(ctx context.Context, base, username string) (rawData, error) {
	mctx, cancel := context.WithTimeout(ctx, perMirror)
	defer cancel()

	req, err := http.NewRequestWithContext(mctx, http.MethodGet, base+"/"+username, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := httpcache.FetchURL(mctx, s.c.cache, s.c.httpClient, req, s.c.logger)
	if err != nil {
		return nil, err
	}

	var raw rawData
	if err := json.Unmarshal(body, &raw); err != nil {
		blob := htmlutil.BraceJSON(string(body), "")
		if blob == "" || json.Unmarshal([]byte(blob), &raw) != nil {
			return nil, fmt.Errorf("decode mirror response: %w", err)
		}
	}

	if normalize(raw)["matchedUser"] != nil {
		return raw, nil
	}
	if status, _ := raw["status"].(string); status == "success" {
		return synthesizeFlat(username, raw), nil
	}
	return nil, errNoUser
}
