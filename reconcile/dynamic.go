package reconcile

import (
	"sort"

	"github.com/better-i18n/i18n-sync/usage"
)

// resolveDynamic matches every distinct interpolation template against the
// remote leaves. One audit entry is recorded per template, even without
// matches. Matched leaves count as used unless review hold-out is enabled.
func (e *engine) resolveDynamic(records []usage.Record) {
	type group struct {
		pattern Pattern
		first   usage.Record
		refs    []usage.Record
	}
	groups := make(map[string]*group)
	for _, r := range records {
		p := CompilePattern(e.qualify(r, r.Template()))
		g, ok := groups[p.String()]
		if !ok {
			g = &group{pattern: p, first: r}
			groups[p.String()] = g
		}
		if usage.Less(r, g.first) {
			g.first = r
		}
		g.refs = append(g.refs, r)
	}

	for _, g := range groups {
		matched := []string{}
		for _, leaf := range e.leaves {
			if !g.pattern.Match(leaf) {
				continue
			}
			matched = append(matched, leaf)
			if e.opts.holdDynamic {
				e.held[leaf] = struct{}{}
				continue
			}
			e.use(leaf, g.refs...)
		}
		e.patterns = append(e.patterns, PatternMatch{
			Pattern:     g.pattern.String(),
			File:        g.first.File,
			Line:        g.first.Line,
			MatchedKeys: matched,
		})
	}

	sort.Slice(e.patterns, func(i, j int) bool {
		return e.patterns[i].Pattern < e.patterns[j].Pattern
	})
}
