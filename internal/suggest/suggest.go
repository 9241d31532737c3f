// Package suggest produces "did you mean" hints for names that are not
// registered, using fuzzy subsequence matching over the known names.
package suggest

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Closest returns the known name that best matches name, or "" when nothing
// is close. A candidate matches when the characters of name appear in it in
// order ("tols" → "tools"), or when the candidate's characters appear in name
// ("toolss" → "tools").
func Closest(name string, known []string) string {
	if name == "" || len(known) == 0 {
		return ""
	}

	candidates := make([]string, 0, len(known))
	for _, k := range known {
		if k != name {
			candidates = append(candidates, k)
		}
	}
	sort.Strings(candidates)

	if matches := fuzzy.Find(name, candidates); len(matches) > 0 {
		return matches[0].Str
	}

	best, bestScore := "", 0
	for _, c := range candidates {
		m := fuzzy.Find(c, []string{name})
		if len(m) == 0 {
			continue
		}
		if best == "" || m[0].Score > bestScore {
			best, bestScore = c, m[0].Score
		}
	}
	return best
}
