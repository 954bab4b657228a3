package leetcode

import (
	"testing"

	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

func row(difficulty string, count any) map[string]any {
	return map[string]any{"difficulty": difficulty, "count": count}
}

func withStats(mu map[string]any, rows ...any) map[string]any {
	mu["submitStatsGlobal"] = map[string]any{"acSubmissionNum": rows}
	return mu
}

func TestExtractCounts(t *testing.T) {
	nj := map[string]any{"matchedUser": withStats(map[string]any{"username": "alice"},
		row("All", float64(100)),
		row("Easy", float64(50)),
		row("Medium", float64(35)),
		row("Hard", float64(15)),
	)}

	rpt := extract(nj, "alice")

	if rpt.TotalSolved != 100 || rpt.EasySolved != 50 || rpt.MediumSolved != 35 || rpt.HardSolved != 15 {
		t.Errorf("counts = %d/%d/%d/%d, want 100/50/35/15",
			rpt.TotalSolved, rpt.EasySolved, rpt.MediumSolved, rpt.HardSolved)
	}
	if rpt.Error {
		t.Error("Error = true with full stats present")
	}
	if rpt.ErrorMessage != nil {
		t.Errorf("ErrorMessage = %q, want nil", *rpt.ErrorMessage)
	}
}

func TestExtractRowCoercion(t *testing.T) {
	tests := []struct {
		name       string
		rows       []any
		wantMedium int
		wantTotal  int
	}{
		{"string count", []any{row("Medium", "12")}, 12, 12},
		{"non-numeric count", []any{row("Medium", "lots")}, 0, 0},
		{"submissions fallback", []any{map[string]any{"difficulty": "Medium", "submissions": float64(8)}}, 8, 8},
		{"unrecognized label ignored", []any{row("Extreme", float64(9)), row("Medium", float64(4))}, 4, 4},
		{"empty difficulty counts as total", []any{row("", float64(42))}, 0, 42},
		{"duplicate rows summed", []any{row("Medium", float64(3)), row("Medium", float64(4))}, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nj := map[string]any{"matchedUser": withStats(map[string]any{"username": "u"}, tt.rows...)}
			rpt := extract(nj, "u")
			if rpt.MediumSolved != tt.wantMedium {
				t.Errorf("MediumSolved = %d, want %d", rpt.MediumSolved, tt.wantMedium)
			}
			if rpt.TotalSolved != tt.wantTotal {
				t.Errorf("TotalSolved = %d, want %d", rpt.TotalSolved, tt.wantTotal)
			}
		})
	}
}

func TestExtractStatLocations(t *testing.T) {
	rows := []any{row("All", float64(5))}

	tests := []struct {
		name string
		nj   map[string]any
	}{
		{
			"submitStatsGlobal",
			map[string]any{"matchedUser": map[string]any{
				"submitStatsGlobal": map[string]any{"acSubmissionNum": rows},
			}},
		},
		{
			"submitStats alias",
			map[string]any{"matchedUser": map[string]any{
				"submitStats": map[string]any{"acSubmissionNum": rows},
			}},
		},
		{
			"top level",
			map[string]any{
				"matchedUser":       map[string]any{"username": "u"},
				"submitStatsGlobal": map[string]any{"acSubmissionNum": rows},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpt := extract(normalize(tt.nj), "u")
			if rpt.TotalSolved != 5 {
				t.Errorf("TotalSolved = %d, want 5", rpt.TotalSolved)
			}
		})
	}
}

func TestExtractTopLevelStatsOnly(t *testing.T) {
	raw := map[string]any{
		"submitStatsGlobal": map[string]any{"acSubmissionNum": []any{
			row("All", float64(42)),
			row("Medium", "12"),
		}},
	}

	rpt := extract(normalize(raw), "alice")

	if rpt.TotalSolved != 42 || rpt.MediumSolved != 12 {
		t.Errorf("counts = %d/%d, want 42/12 from a user-less payload", rpt.TotalSolved, rpt.MediumSolved)
	}
	if rpt.Error {
		t.Error("Error = true with usable stats")
	}
}

func TestExtractNoUser(t *testing.T) {
	rpt := extract(map[string]any{}, "ghost")

	if !rpt.Error {
		t.Error("Error = false with no matched user")
	}
	if rpt.ErrorMessage == nil || *rpt.ErrorMessage != report.MsgProfileNotFound {
		t.Errorf("ErrorMessage = %v, want profile-not-found message", rpt.ErrorMessage)
	}
	if rpt.Username != "ghost" {
		t.Errorf("Username = %q", rpt.Username)
	}
	if rpt.SubmissionCalendar == nil {
		t.Error("SubmissionCalendar = nil, want empty map")
	}
}

func TestExtractProfileWithoutStats(t *testing.T) {
	nj := map[string]any{"matchedUser": map[string]any{
		"username": "alice",
		"profile":  map[string]any{"ranking": float64(4821)},
	}}

	rpt := extract(nj, "alice")

	if !rpt.Error {
		t.Error("Error = false, want true when stats missing")
	}
	if rpt.ErrorMessage == nil || *rpt.ErrorMessage != report.MsgStatsUnavailable {
		t.Errorf("ErrorMessage = %v, want stats-unavailable message", rpt.ErrorMessage)
	}
	if rpt.Ranking == nil || *rpt.Ranking != 4821 {
		t.Errorf("Ranking = %v, want 4821", rpt.Ranking)
	}
}

func TestExtractCalendar(t *testing.T) {
	tests := []struct {
		name string
		cal  any
		want int
	}{
		{"json string", `{"1700000000": 3, "1700086400": 1}`, 2},
		{"decoded map", map[string]any{"1700000000": float64(3)}, 1},
		{"malformed string", `{not json`, 0},
		{"wrong type", float64(42), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nj := map[string]any{"matchedUser": map[string]any{
				"username":           "u",
				"submissionCalendar": tt.cal,
			}}
			rpt := extract(nj, "u")
			if len(rpt.SubmissionCalendar) != tt.want {
				t.Errorf("calendar entries = %d, want %d", len(rpt.SubmissionCalendar), tt.want)
			}
			if rpt.SubmissionCalendar == nil {
				t.Error("SubmissionCalendar = nil, want empty map")
			}
		})
	}
}

func TestExtractUserCalendar(t *testing.T) {
	nj := map[string]any{"matchedUser": map[string]any{
		"username": "alice",
		"userCalendar": map[string]any{
			"streak":          float64(12),
			"totalActiveDays": float64(88),
		},
	}}

	rpt := extract(nj, "alice")

	if rpt.Streak != 12 {
		t.Errorf("Streak = %d, want 12", rpt.Streak)
	}
	if rpt.TotalActiveDays != 88 {
		t.Errorf("TotalActiveDays = %d, want 88", rpt.TotalActiveDays)
	}
}

func TestExtractAcceptanceRate(t *testing.T) {
	nj := map[string]any{
		"matchedUser":    map[string]any{"username": "u"},
		"acceptanceRate": "63.4",
	}

	rpt := extract(nj, "u")
	if rpt.AcceptanceRate != 63.4 {
		t.Errorf("AcceptanceRate = %v, want 63.4", rpt.AcceptanceRate)
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"float64", float64(7), 7},
		{"int", 7, 7},
		{"string", "7", 7},
		{"padded string", " 7 ", 7},
		{"garbage string", "seven", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toInt(tt.in); got != tt.want {
				t.Errorf("toInt(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
