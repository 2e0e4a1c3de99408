package reconcile

import (
	"strings"
)

// wildcard is the normalised marker written in place of every interpolation.
const wildcard = "${}"

// Pattern is a compiled dynamic key template: literal parts separated by
// wildcards. Each wildcard matches one or more characters within a single
// path segment.
type Pattern struct {
	parts []string
}

// CompilePattern compiles a template such as "plans.${plan.id}.name".
// Interpolations are written as ${...}, {} or *.
func CompilePattern(template string) Pattern {
	var parts []string
	var lit strings.Builder
	for i := 0; i < len(template); {
		switch {
		case strings.HasPrefix(template[i:], "${"):
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				// Unterminated interpolation swallows the rest.
				i = len(template)
			} else {
				i += end + 1
			}
		case strings.HasPrefix(template[i:], "{}"):
			i += 2
		case template[i] == '*':
			i++
		default:
			lit.WriteByte(template[i])
			i++
			continue
		}
		parts = append(parts, lit.String())
		lit.Reset()
	}
	parts = append(parts, lit.String())
	return Pattern{parts: parts}
}

// String returns the template with every interpolation normalised to ${}.
func (p Pattern) String() string {
	return strings.Join(p.parts, wildcard)
}

// Wildcards returns the number of interpolation points.
func (p Pattern) Wildcards() int {
	return len(p.parts) - 1
}

// Match reports whether key is an instance of the template.
func (p Pattern) Match(key string) bool {
	return matchParts(key, p.parts)
}

func matchParts(s string, parts []string) bool {
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	if len(parts) == 1 {
		return s == ""
	}
	for i := 1; i <= len(s); i++ {
		if s[i-1] == '.' {
			return false
		}
		if matchParts(s[i:], parts[1:]) {
			return true
		}
	}
	return false
}
