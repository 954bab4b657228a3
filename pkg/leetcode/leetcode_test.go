package leetcode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"profile url", "https://leetcode.com/alice/", true},
		{"u-prefixed profile", "https://leetcode.com/u/alice/", true},
		{"uppercase host", "https://LeetCode.com/alice", true},
		{"problem page", "https://leetcode.com/problems/two-sum/", false},
		{"contest page", "https://leetcode.com/contest/weekly-401/", false},
		{"discuss page", "https://leetcode.com/discuss/general", false},
		{"other site", "https://github.com/alice", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.url); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "https://leetcode.com/alice/", "alice"},
		{"u prefix", "https://leetcode.com/u/bob_smith", "bob_smith"},
		{"hyphenated", "https://leetcode.com/jane-doe/", "jane-doe"},
		{"no match", "https://example.com/alice", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractUsername(tt.url); got != tt.want {
				t.Errorf("ExtractUsername(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// stubStrategy lets cascade tests script each step's outcome.
type stubStrategy struct {
	id       string
	raw      rawData
	err      error
	attempts *[]string
}

func (s *stubStrategy) name() string         { return s.id }
func (*stubStrategy) timeout() time.Duration { return time.Second }

func (*stubStrategy) valid(rpt *report.LeetCode) bool { return rpt.HasStats() }

func (s *stubStrategy) attempt(_ context.Context, _ string) (rawData, error) {
	*s.attempts = append(*s.attempts, s.id)
	return s.raw, s.err
}

func cascadeClient(strategies ...strategy) *Client {
	c := &Client{logger: discardLogger()}
	c.strategies = strategies
	return c
}

func fullStatsRaw() rawData {
	return rawData{"matchedUser": map[string]any{
		"username": "alice",
		"submitStatsGlobal": map[string]any{"acSubmissionNum": []any{
			map[string]any{"difficulty": "All", "count": float64(10)},
			map[string]any{"difficulty": "Easy", "count": float64(10)},
		}},
	}}
}

func rankingOnlyRaw(ranking float64) rawData {
	return rawData{"matchedUser": map[string]any{
		"username": "alice",
		"profile":  map[string]any{"ranking": ranking},
	}}
}

func TestFetchShortCircuitsOnSuccess(t *testing.T) {
	var attempts []string
	c := cascadeClient(
		&stubStrategy{id: "first", raw: fullStatsRaw(), attempts: &attempts},
		&stubStrategy{id: "second", err: errors.New("should not run"), attempts: &attempts},
	)

	rpt := c.Fetch(context.Background(), "alice")

	if rpt.TotalSolved != 10 {
		t.Errorf("TotalSolved = %d, want 10", rpt.TotalSolved)
	}
	if len(attempts) != 1 || attempts[0] != "first" {
		t.Errorf("attempts = %v, want [first]", attempts)
	}
}

func TestFetchFallsThroughErrors(t *testing.T) {
	var attempts []string
	c := cascadeClient(
		&stubStrategy{id: "first", err: errors.New("blocked"), attempts: &attempts},
		&stubStrategy{id: "second", err: errors.New("timeout"), attempts: &attempts},
		&stubStrategy{id: "third", raw: fullStatsRaw(), attempts: &attempts},
	)

	rpt := c.Fetch(context.Background(), "alice")

	if rpt.Error {
		t.Error("Error = true, want success from the third strategy")
	}
	if len(attempts) != 3 {
		t.Errorf("attempts = %v, want all three", attempts)
	}
}

func TestFetchRetainsPartialResult(t *testing.T) {
	var attempts []string
	c := cascadeClient(
		&stubStrategy{id: "partial", raw: rankingOnlyRaw(4821), attempts: &attempts},
		&stubStrategy{id: "failing", err: errors.New("down"), attempts: &attempts},
	)

	rpt := c.Fetch(context.Background(), "alice")

	if rpt.Ranking == nil || *rpt.Ranking != 4821 {
		t.Errorf("Ranking = %v, want retained 4821", rpt.Ranking)
	}
	if !rpt.Error {
		t.Error("Error = false, want degraded report")
	}
	if rpt.ErrorMessage == nil || *rpt.ErrorMessage != report.MsgStatsUnavailable {
		t.Errorf("ErrorMessage = %v, want stats-unavailable", rpt.ErrorMessage)
	}
}

func TestFetchFirstPartialWins(t *testing.T) {
	var attempts []string
	c := cascadeClient(
		&stubStrategy{id: "first", raw: rankingOnlyRaw(100), attempts: &attempts},
		&stubStrategy{id: "second", raw: rankingOnlyRaw(999), attempts: &attempts},
	)

	rpt := c.Fetch(context.Background(), "alice")

	if rpt.Ranking == nil || *rpt.Ranking != 100 {
		t.Errorf("Ranking = %v, want first strategy's 100", rpt.Ranking)
	}
}

func TestFetchMergeFillsGaps(t *testing.T) {
	var attempts []string
	streakOnly := rawData{
		"matchedUser": map[string]any{"username": "alice"},
		"streak":      float64(5),
	}
	c := cascadeClient(
		&stubStrategy{id: "ranking", raw: rankingOnlyRaw(100), attempts: &attempts},
		&stubStrategy{id: "streak", raw: streakOnly, attempts: &attempts},
	)

	rpt := c.Fetch(context.Background(), "alice")

	if rpt.Ranking == nil || *rpt.Ranking != 100 {
		t.Errorf("Ranking = %v, want 100", rpt.Ranking)
	}
	if rpt.Streak != 5 {
		t.Errorf("Streak = %d, want 5 filled from the later strategy", rpt.Streak)
	}
}

func TestFetchRetainsRateOnlyCandidate(t *testing.T) {
	var attempts []string
	rateOnly := rawData{
		"matchedUser":    map[string]any{"username": "alice"},
		"acceptanceRate": 62.5,
	}
	c := cascadeClient(
		&stubStrategy{id: "rate", raw: rateOnly, attempts: &attempts},
		&stubStrategy{id: "failing", err: errors.New("down"), attempts: &attempts},
	)

	rpt := c.Fetch(context.Background(), "alice")

	if rpt.AcceptanceRate != 62.5 {
		t.Errorf("AcceptanceRate = %v, want retained 62.5", rpt.AcceptanceRate)
	}
	if !rpt.Error {
		t.Error("Error = false, want degraded report")
	}
	if rpt.ErrorMessage == nil || *rpt.ErrorMessage != report.MsgProfileNotFound {
		t.Errorf("ErrorMessage = %v, want profile-not-found without profile signal", rpt.ErrorMessage)
	}
}

func TestFetchExhaustionReturnsTemplate(t *testing.T) {
	var attempts []string
	c := cascadeClient(
		&stubStrategy{id: "a", err: errors.New("down"), attempts: &attempts},
		&stubStrategy{id: "b", err: errors.New("down"), attempts: &attempts},
	)

	rpt := c.Fetch(context.Background(), "ghost")

	if !rpt.Error {
		t.Error("Error = false after exhaustion")
	}
	if rpt.ErrorMessage == nil || *rpt.ErrorMessage != report.MsgProfileNotFound {
		t.Errorf("ErrorMessage = %v, want profile-not-found", rpt.ErrorMessage)
	}
	if rpt.Username != "ghost" {
		t.Errorf("Username = %q", rpt.Username)
	}
	if rpt.SubmissionCalendar == nil {
		t.Error("SubmissionCalendar = nil, want empty map")
	}
}

func TestNewWithoutBrowser(t *testing.T) {
	c, err := New(context.Background(), WithoutBrowser(), WithLogger(discardLogger()))
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range c.strategies {
		if s.name() == "browser" {
			t.Error("browser strategy present despite WithoutBrowser()")
		}
	}
	if got := len(c.strategies); got != 4 {
		t.Errorf("strategy count = %d, want 4", got)
	}
}

func TestNewStrategyOrder(t *testing.T) {
	c, err := New(context.Background(), WithoutBrowser(), WithLogger(discardLogger()))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"graphql", "statsapi", "html", "mirrors"}
	for i, s := range c.strategies {
		if s.name() != want[i] {
			t.Errorf("strategies[%d] = %q, want %q", i, s.name(), want[i])
		}
	}
}
