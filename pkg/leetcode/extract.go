package leetcode

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/statpath/pkg/report"
)

// extract converts a normalized payload into a report. It starts from the
// degraded template and overlays whatever fields the payload actually has,
// so a thin payload still yields a structurally complete result.
func extract(nj map[string]any, username string) *report.LeetCode {
	rpt := report.NewLeetCode(username)

	mu := asMap(nj["matchedUser"])
	if mu == nil {
		msg := report.MsgProfileNotFound
		rpt.ErrorMessage = &msg
		return rpt
	}

	for _, row := range statRows(nj, mu) {
		rm := asMap(row)
		if rm == nil {
			continue
		}
		diff := strings.ToLower(toString(rm["difficulty"]))
		count := toInt(rm["count"])
		if count == 0 {
			count = toInt(rm["submissions"])
		}
		switch {
		case diff == "" || strings.Contains(diff, "all"):
			rpt.TotalSolved += count
		case strings.Contains(diff, "easy"):
			rpt.EasySolved += count
		case strings.Contains(diff, "medium"):
			rpt.MediumSolved += count
		case strings.Contains(diff, "hard"):
			rpt.HardSolved += count
		}
	}
	if rpt.TotalSolved == 0 {
		rpt.TotalSolved = rpt.EasySolved + rpt.MediumSolved + rpt.HardSolved
	}

	rpt.SubmissionCalendar = decodeCalendar(firstVal(mu["submissionCalendar"], nj["submissionCalendar"]))

	if cal := asMap(mu["userCalendar"]); cal != nil {
		rpt.Streak = toInt(cal["streak"])
		rpt.TotalActiveDays = toInt(cal["totalActiveDays"])
		if len(rpt.SubmissionCalendar) == 0 {
			rpt.SubmissionCalendar = decodeCalendar(cal["submissionCalendar"])
		}
	}
	if rpt.Streak == 0 {
		rpt.Streak = firstInt(nj["streak"], mu["streak"])
	}
	if rpt.TotalActiveDays == 0 {
		rpt.TotalActiveDays = firstInt(nj["activeDays"], mu["activeDays"], mu["totalActiveDays"])
	}

	rpt.AcceptanceRate = firstFloat(nj["acceptanceRate"], mu["acceptanceRate"])

	if prof := asMap(mu["profile"]); prof != nil {
		if ranking := toInt(prof["ranking"]); ranking > 0 {
			rpt.Ranking = &ranking
		}
		rpt.Reputation = toInt(prof["reputation"])
		rpt.ContributionPoints = toInt(prof["postViewCount"])
	}

	if rpt.HasStats() {
		rpt.Error = false
		rpt.ErrorMessage = nil
		return rpt
	}

	rpt.Error = true
	msg := report.MsgProfileNotFound
	if rpt.HasProfileSignal() {
		msg = report.MsgStatsUnavailable
	}
	rpt.ErrorMessage = &msg
	return rpt
}

// statRows returns the first non-empty acSubmissionNum array, checking the
// three places upstreams are known to put it.
func statRows(nj, mu map[string]any) []any {
	candidates := []any{mu["submitStatsGlobal"], mu["submitStats"], nj["submitStatsGlobal"]}
	for _, cand := range candidates {
		cm := asMap(cand)
		if cm == nil {
			continue
		}
		if rows, ok := cm["acSubmissionNum"].([]any); ok && len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// decodeCalendar accepts the calendar either as a JSON string or as an
// already-decoded map and returns timestamp->count. Anything unparseable
// yields an empty map, never nil.
func decodeCalendar(v any) map[string]int {
	out := make(map[string]int)

	var m map[string]any
	switch t := v.(type) {
	case string:
		if t == "" {
			return out
		}
		if err := json.Unmarshal([]byte(t), &m); err != nil {
			return out
		}
	case map[string]any:
		m = t
	default:
		return out
	}

	for k, val := range m {
		out[k] = toInt(val)
	}
	return out
}

func firstVal(vs ...any) any {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstInt(vs ...any) int {
	for _, v := range vs {
		if n := toInt(v); n != 0 {
			return n
		}
	}
	return 0
}

func firstFloat(vs ...any) float64 {
	for _, v := range vs {
		if f := toFloat(v); f != 0 {
			return f
		}
	}
	return 0
}

// toInt coerces JSON scalar shapes to int, returning 0 for anything else.
func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
