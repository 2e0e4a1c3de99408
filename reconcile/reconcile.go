// Package reconcile decides which translation keys used in a codebase are
// missing from the remote store and which remote keys appear unused.
//
// Reconcile is a pure function: it performs no I/O and keeps no state between
// calls. Scope resolution, fuzzy fragment matching and dynamic template
// matching build the local key universe, which is then compared with the
// remote leaf set. The two set-size invariants are reported as flags.
package reconcile

import (
	"math"
	"sort"

	"github.com/better-i18n/i18n-sync/tree"
	"github.com/better-i18n/i18n-sync/usage"
)

type options struct {
	holdDynamic bool
}

// Option configures a reconciliation run.
type Option func(*options)

// WithHoldDynamicForReview keeps leaves that are reachable only through a
// dynamic template out of the local key universe. They are reported under
// DynamicReviewRequired instead of being counted as used.
func WithHoldDynamicForReview(hold bool) Option {
	return func(o *options) {
		o.holdDynamic = hold
	}
}

type engine struct {
	opts   options
	flat   tree.Flat
	leaves []string

	universe map[string]struct{}
	held     map[string]struct{}
	refs     map[string]map[string]struct{}

	patterns []PatternMatch
	fuzzy    []FuzzyResolution
}

// Reconcile computes the report for usages against the remote tree.
func Reconcile(usages []usage.Record, remote tree.Tree, opts ...Option) *Report {
	e := &engine{
		flat:     tree.Flatten(remote),
		universe: make(map[string]struct{}),
		held:     make(map[string]struct{}),
		refs:     make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	e.leaves = e.flat.SortedLeaves()

	var scoped, fragments, dynamic []usage.Record
	for _, r := range usages {
		switch {
		case r.IsDynamic:
			dynamic = append(dynamic, r)
		case r.BindingType == usage.RootScoped || r.BindingType == usage.BoundScoped:
			scoped = append(scoped, r)
		default:
			fragments = append(fragments, r)
		}
	}

	e.expandNamespaces(usages)
	e.resolveScoped(scoped)
	e.resolveFuzzy(fragments)
	e.resolveDynamic(dynamic)

	report := e.report()
	report.Metrics.Usages = len(usages)
	return report
}

// use adds key to the local universe and records where it is referenced.
func (e *engine) use(key string, refs ...usage.Record) {
	e.universe[key] = struct{}{}
	locs, ok := e.refs[key]
	if !ok {
		locs = make(map[string]struct{})
		e.refs[key] = locs
	}
	for _, r := range refs {
		locs[r.Location()] = struct{}{}
	}
}

func (e *engine) report() *Report {
	r := &Report{
		Patterns: e.patterns,
		Fuzzy:    e.fuzzy,
	}
	if r.Patterns == nil {
		r.Patterns = []PatternMatch{}
	}
	if r.Fuzzy == nil {
		r.Fuzzy = []FuzzyResolution{}
	}

	var missing, unused, review []Entry
	r.Intersection = []string{}
	for _, k := range sortedSet(e.universe) {
		if e.flat.IsLeaf(k) {
			r.Intersection = append(r.Intersection, k)
			continue
		}
		missing = append(missing, Entry{Key: k, Locations: sortedSet(e.refs[k])})
	}
	for _, leaf := range e.leaves {
		if _, ok := e.universe[leaf]; ok {
			continue
		}
		entry := Entry{Key: leaf, Text: e.flat.Leaves[leaf]}
		if _, ok := e.held[leaf]; ok {
			review = append(review, entry)
		} else {
			unused = append(unused, entry)
		}
	}

	r.Missing = groupEntries(missing)
	r.Unused = groupEntries(unused)
	r.DynamicReviewRequired = groupEntries(review)

	r.References = []Reference{}
	for _, k := range sortedSet(e.universe) {
		locs := sortedSet(e.refs[k])
		if len(locs) == 0 {
			continue
		}
		r.References = append(r.References, Reference{Key: k, Locations: locs})
	}

	local, remote, matched := len(e.universe), len(e.leaves), len(r.Intersection)
	r.Metrics = Metrics{
		LocalKeys:        local,
		RemoteKeys:       remote,
		RemoteContainers: len(e.flat.Containers),
		Matched:          matched,
		Missing:          len(missing),
		Unused:           len(unused),
		DynamicReview:    len(review),
		LocalCoverage:    coverage(matched, local),
		RemoteCoverage:   coverage(matched, remote),
	}
	r.Invariants = Invariants{
		LocalBalanced:  local == matched+len(missing),
		RemoteBalanced: remote == matched+len(unused)+len(review),
	}
	return r
}

// coverage returns part/total as a rounded percentage; an empty total is
// fully covered.
func coverage(part, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// groupEntries groups sorted entries by top-level namespace.
func groupEntries(entries []Entry) []Group {
	groups := []Group{}
	index := make(map[string]int)
	for _, e := range entries {
		ns := Namespace(e.Key)
		i, ok := index[ns]
		if !ok {
			i = len(groups)
			index[ns] = i
			groups = append(groups, Group{Namespace: ns})
		}
		groups[i].Keys = append(groups[i].Keys, e)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Namespace < groups[j].Namespace
	})
	return groups
}

func sortedSet[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
