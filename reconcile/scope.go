package reconcile

import (
	"strings"

	"github.com/better-i18n/i18n-sync/usage"
)

// qualify returns the full key path addressed by key under the binding of r.
// Bound-scoped keys are joined to their namespace unless the key already
// carries it and the joined path does not exist remotely.
func (e *engine) qualify(r usage.Record, key string) string {
	if r.BindingType != usage.BoundScoped || r.Namespace == "" {
		return key
	}
	joined := r.Namespace + "." + key
	if e.flat.IsLeaf(joined) || e.flat.IsContainer(joined) {
		return joined
	}
	if key == r.Namespace || strings.HasPrefix(key, r.Namespace+".") {
		return key
	}
	return joined
}

// expandNamespaces marks every leaf below the namespace of a bound-scoped
// record as used. The namespace itself is never added.
func (e *engine) expandNamespaces(records []usage.Record) {
	expanded := make(map[string]bool)
	for _, r := range records {
		if r.BindingType != usage.BoundScoped || expanded[r.Namespace] {
			continue
		}
		expanded[r.Namespace] = true
		if e.namespaceReachable(r.Namespace) {
			e.addDescendants(r.Namespace)
		}
	}
}

// resolveScoped handles static root-scoped and bound-scoped records:
// container-access expansion and literal keys.
func (e *engine) resolveScoped(records []usage.Record) {
	// The fully qualified bucket: resolved key -> records that produced it.
	bucket := make(map[string][]usage.Record)
	for _, r := range records {
		k := e.qualify(r, r.Key)
		bucket[k] = append(bucket[k], r)
	}

	for k, refs := range bucket {
		if e.flat.IsContainer(k) {
			e.addDescendants(k)
			// A container reference is noise when its children are also
			// extracted; otherwise it is kept and surfaces as missing.
			if hasDescendantIn(k, bucket) {
				continue
			}
		}
		e.use(k, refs...)
	}
}

// namespaceReachable reports whether ns equals or prefixes a container path.
func (e *engine) namespaceReachable(ns string) bool {
	if e.flat.IsContainer(ns) {
		return true
	}
	for c := range e.flat.Containers {
		if strings.HasPrefix(c, ns+".") {
			return true
		}
	}
	return false
}

// addDescendants marks every remote leaf below prefix as used.
func (e *engine) addDescendants(prefix string) {
	p := prefix + "."
	for _, leaf := range e.leaves {
		if strings.HasPrefix(leaf, p) {
			e.universe[leaf] = struct{}{}
		}
	}
}

func hasDescendantIn(key string, bucket map[string][]usage.Record) bool {
	p := key + "."
	for other := range bucket {
		if strings.HasPrefix(other, p) {
			return true
		}
	}
	return false
}
