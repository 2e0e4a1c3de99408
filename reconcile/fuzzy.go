package reconcile

import (
	"sort"
	"strings"

	"github.com/better-i18n/i18n-sync/usage"
)

// matchFragment resolves a fragment of unknown scope against the sorted
// remote leaves. An exact match wins outright; otherwise every leaf ending in
// the fragment on a dot boundary matches, so "name" never matches
// "user.surname".
func matchFragment(p string, leaves []string) []string {
	if i := sort.SearchStrings(leaves, p); i < len(leaves) && leaves[i] == p {
		return []string{p}
	}

	suffix := "." + p
	matches := []string{}
	for _, leaf := range leaves {
		if strings.HasSuffix(leaf, suffix) {
			matches = append(matches, leaf)
		}
	}
	return matches
}

// resolveFuzzy handles unknown-scoped and unbound records. Unique and
// ambiguous matches add every matched leaf; an unmatched fragment is added
// verbatim so it is reported as missing.
func (e *engine) resolveFuzzy(records []usage.Record) {
	byFragment := make(map[string][]usage.Record)
	for _, r := range records {
		byFragment[r.Key] = append(byFragment[r.Key], r)
	}

	for p, refs := range byFragment {
		matches := matchFragment(p, e.leaves)
		if len(matches) == 0 {
			e.use(p, refs...)
		}
		for _, leaf := range matches {
			e.use(leaf, refs...)
		}
		e.fuzzy = append(e.fuzzy, FuzzyResolution{
			Fragment:  p,
			Matches:   matches,
			Ambiguous: len(matches) > 1,
		})
	}

	sort.Slice(e.fuzzy, func(i, j int) bool {
		return e.fuzzy[i].Fragment < e.fuzzy[j].Fragment
	})
}
