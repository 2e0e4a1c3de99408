package reconcile

import (
	"strings"
)

// defaultNamespace groups keys without a dot.
const defaultNamespace = "default"

// Entry is one key in a missing or unused list.
type Entry struct {
	Key string `json:"key"`
	// Text is the remote display text for unused keys.
	Text string `json:"text,omitempty"`
	// Locations lists file:line references for missing keys.
	Locations []string `json:"locations,omitempty"`
}

// Group is a list of entries that share a top-level namespace.
type Group struct {
	Namespace string  `json:"namespace"`
	Keys      []Entry `json:"keys"`
}

// PatternMatch is the audit record for one distinct dynamic key template.
type PatternMatch struct {
	Pattern     string   `json:"pattern"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	MatchedKeys []string `json:"matchedKeys"`
}

// FuzzyResolution records how a fragment of unknown scope was resolved.
type FuzzyResolution struct {
	Fragment  string   `json:"fragment"`
	Matches   []string `json:"matches"`
	Ambiguous bool     `json:"ambiguous"`
}

// Reference lists where a resolved key is used.
type Reference struct {
	Key       string   `json:"key"`
	Locations []string `json:"locations"`
}

// Metrics holds the report counts and coverage percentages.
type Metrics struct {
	Usages           int `json:"usages"`
	LocalKeys        int `json:"localKeys"`
	RemoteKeys       int `json:"remoteKeys"`
	RemoteContainers int `json:"remoteContainers"`
	Matched          int `json:"matched"`
	Missing          int `json:"missing"`
	Unused           int `json:"unused"`
	DynamicReview    int `json:"dynamicReview"`
	LocalCoverage    int `json:"localCoverage"`
	RemoteCoverage   int `json:"remoteCoverage"`
}

// Invariants are the self-audit results of a reconciliation run.
type Invariants struct {
	// LocalBalanced: |local| == |matched| + |missing|.
	LocalBalanced bool `json:"localBalanced"`
	// RemoteBalanced: |remote| == |matched| + |unused| + |dynamicReview|.
	RemoteBalanced bool `json:"remoteBalanced"`
}

// OK reports whether both invariants hold.
func (i Invariants) OK() bool {
	return i.LocalBalanced && i.RemoteBalanced
}

// Report is the result of a reconciliation run. All lists are sorted.
type Report struct {
	Metrics               Metrics           `json:"metrics"`
	Invariants            Invariants        `json:"invariants"`
	Missing               []Group           `json:"missing"`
	Unused                []Group           `json:"unused"`
	DynamicReviewRequired []Group           `json:"dynamicReviewRequired"`
	Patterns              []PatternMatch    `json:"patterns"`
	Fuzzy                 []FuzzyResolution `json:"fuzzy"`
	Intersection          []string          `json:"intersection"`
	References            []Reference       `json:"references"`
}

// MissingKeys returns every missing key in sorted order.
func (r *Report) MissingKeys() []string {
	return groupKeys(r.Missing)
}

// UnusedKeys returns every statically unused key in sorted order.
func (r *Report) UnusedKeys() []string {
	return groupKeys(r.Unused)
}

// Namespace returns the first dot segment of key, or "default" when key has
// no dot.
func Namespace(key string) string {
	ns, _, found := strings.Cut(key, ".")
	if !found || ns == "" {
		return defaultNamespace
	}
	return ns
}

func groupKeys(groups []Group) []string {
	var keys []string
	for _, g := range groups {
		for _, e := range g.Keys {
			keys = append(keys, e.Key)
		}
	}
	return keys
}
