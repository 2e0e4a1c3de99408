package scanner

import (
	"regexp"
	"sort"
	"strings"

	"github.com/better-i18n/i18n-sync/usage"
)

// Patterns for translator bindings and translator calls.
var (
	// const t = useTranslations('auth'), const t = await getTranslations({ namespace: 'auth' })
	bindingPattern = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:await\s+)?(?:useTranslations|getTranslations)\s*\(([^)]*)\)`)
	// namespace: 'auth' inside an options object.
	namespaceProp = regexp.MustCompile(`\bnamespace\s*:\s*(['"\x60][^'"\x60]*['"\x60])`)
	// t('key'), t.rich("key"), tCommon(`key`); the identifier must not be a member access.
	callPattern = regexp.MustCompile(`(?:^|[^\w$.])([A-Za-z_$][\w$]*)(?:\.(?:rich|raw|markup|has))?\(\s*('[^'\\\n]*'|"[^"\\\n]*"|\x60[^\x60\\]*\x60)`)
)

type binding struct {
	kind      usage.BindingType
	namespace string
}

// parseBinding classifies the argument list of a useTranslations or
// getTranslations call.
func parseBinding(args string) binding {
	args = strings.TrimSpace(args)
	if args == "" {
		return binding{kind: usage.RootScoped}
	}
	if ns, ok := trimQuotes(args); ok && !hasInterpolation(ns) {
		if ns == "" {
			return binding{kind: usage.RootScoped}
		}
		return binding{kind: usage.BoundScoped, namespace: ns}
	}
	if strings.HasPrefix(args, "{") {
		m := namespaceProp.FindStringSubmatch(args)
		if m == nil {
			if strings.Contains(args, "namespace") {
				return binding{kind: usage.UnknownScoped}
			}
			return binding{kind: usage.RootScoped}
		}
		if ns, ok := trimQuotes(m[1]); ok && ns != "" && !hasInterpolation(ns) {
			return binding{kind: usage.BoundScoped, namespace: ns}
		}
	}
	return binding{kind: usage.UnknownScoped}
}

// ParseSource extracts usage records from the contents of one source file.
// A binding applies to the calls that follow it; a call on "t" before any
// binding produces an unbound record. Calls may span lines; a record is
// reported at the line of the translator identifier.
func ParseSource(file string, src []byte) []usage.Record {
	text := string(src)
	defs := bindingPattern.FindAllStringSubmatchIndex(text, -1)
	bindings := make(map[string]binding)
	records := []usage.Record{}

	line, lineOffset := 1, 0
	for _, m := range callPattern.FindAllStringSubmatchIndex(text, -1) {
		start := m[2]
		for len(defs) > 0 && defs[0][0] < start {
			d := defs[0]
			bindings[text[d[2]:d[3]]] = parseBinding(text[d[4]:d[5]])
			defs = defs[1:]
		}
		line += strings.Count(text[lineOffset:start], "\n")
		lineOffset = start

		ident, literal := text[m[2]:m[3]], text[m[4]:m[5]]
		b, ok := bindings[ident]
		if !ok {
			if ident != "t" {
				continue
			}
			b = binding{kind: usage.Unbound}
		}
		key, _ := trimQuotes(literal)
		if key == "" {
			continue
		}
		r := usage.Record{
			Key:         key,
			BindingType: b.kind,
			File:        file,
			Line:        line,
		}
		if b.kind == usage.BoundScoped {
			r.Namespace = b.namespace
		}
		if literal[0] == '`' && hasInterpolation(key) {
			r.IsDynamic = true
			r.Pattern = key
		}
		records = append(records, r)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return usage.Less(records[i], records[j])
	})
	return records
}
