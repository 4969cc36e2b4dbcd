package history

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Filter returns the entries whose prompt matches query, best match first.
// A substring hit always outranks a distance-only match; ties keep the
// incoming (newest-first) order. An empty query returns entries unchanged.
func Filter(entries []Entry, query string) []Entry {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return entries
	}

	type ranked struct {
		entry Entry
		score float64
		pos   int
	}
	var matches []ranked
	for i, e := range entries {
		score, ok := promptScore(strings.ToLower(e.Prompt), query)
		if !ok {
			continue
		}
		matches = append(matches, ranked{entry: e, score: score, pos: i})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].pos < matches[j].pos
	})

	out := make([]Entry, len(matches))
	for i, m := range matches {
		out[i] = m.entry
	}
	return out
}

// promptScore rates how well prompt matches query in [0,1]. Substring hits
// score 1; otherwise edit-distance similarity applies with a floor that
// drops hopeless matches entirely.
func promptScore(prompt, query string) (float64, bool) {
	if strings.Contains(prompt, query) {
		return 1, true
	}
	longest := len(prompt)
	if len(query) > longest {
		longest = len(query)
	}
	if longest == 0 {
		return 0, false
	}
	sim := 1 - float64(levenshtein.ComputeDistance(prompt, query))/float64(longest)
	if sim < 0.4 {
		return 0, false
	}
	return sim, true
}
