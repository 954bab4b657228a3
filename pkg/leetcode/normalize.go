package leetcode

// normalize reshapes any upstream payload into a canonical map so the
// extractor only deals with one schema. Recognized inputs include the GraphQL
// response ({"data": {"matchedUser": ...}}), already-unwrapped variants, and
// payloads where the user object travels under "user" or "profile".
//
// Canonical keys: "matchedUser", "userContestRanking", plus loose scalars
// ("acceptanceRate", "streak", "activeDays", "submissionCalendar") copied
// through verbatim. Stat arrays found at the top level are folded into the
// matchedUser copy only when it lacks them, so richer nested data wins.
//
// The function is pure and idempotent: it never mutates its input, and
// normalize(normalize(x)) equals normalize(x). A non-map input yields an
// empty map, which extract turns into the not-found template.
func normalize(v any) map[string]any {
	raw := asMap(v)
	if raw == nil {
		return map[string]any{}
	}

	out := make(map[string]any)

	data := asMap(raw["data"])
	mu := asMap(firstPresent(data, raw, "matchedUser", "user", "profile"))
	if mu != nil {
		// Shallow copy so setdefault folding below never touches the input.
		muCopy := make(map[string]any, len(mu)+2)
		for k, val := range mu {
			muCopy[k] = val
		}
		mu = muCopy
	}

	// Stats or a calendar at the top level imply a user record even when the
	// payload never names one; some mirrors serve exactly that shape.
	if mu == nil && anyPresent(raw, "submitStatsGlobal", "submitStats", "submissionCalendar") {
		mu = make(map[string]any, 2)
	}

	if mu != nil {
		for _, key := range []string{"submitStatsGlobal", "submitStats"} {
			if !hasNonEmpty(mu, key) {
				if v, ok := raw[key]; ok && v != nil {
					mu[key] = v
				}
			}
		}
		if !hasNonEmpty(mu, "submissionCalendar") {
			if v, ok := raw["submissionCalendar"]; ok && v != nil {
				mu["submissionCalendar"] = v
			}
		}
		out["matchedUser"] = mu
	}

	if ucr := firstPresent(data, raw, "userContestRanking", "userContestRankingHistory"); ucr != nil {
		out["userContestRanking"] = ucr
	}

	for _, key := range []string{"acceptanceRate", "streak", "activeDays", "submissionCalendar"} {
		if v, ok := raw[key]; ok && v != nil {
			out[key] = v
		}
	}

	return out
}

// asMap returns v as a map[string]any, or nil if it is not one.
func asMap(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m
}

// firstPresent returns the first non-nil value for any of the keys, checking
// the nested data map before the top-level one.
func firstPresent(data, top map[string]any, keys ...string) any {
	for _, m := range []map[string]any{data, top} {
		if m == nil {
			continue
		}
		for _, key := range keys {
			if v, ok := m[key]; ok && v != nil {
				return v
			}
		}
	}
	return nil
}

// anyPresent reports whether m holds a non-nil value for any of the keys.
func anyPresent(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return true
		}
	}
	return false
}

// hasNonEmpty reports whether m[key] holds something other than nil or an
// empty container.
func hasNonEmpty(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case string:
		return t != ""
	default:
		return true
	}
}
