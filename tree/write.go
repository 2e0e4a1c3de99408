package tree

import (
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is a single leaf to be written as nested YAML.
type Entry struct {
	Key     string
	Value   string
	Comment string
}

// WriteNestedYAML writes entries as a nested YAML document sorted by key.
// Comments are emitted as "# " lines above their leaf. Blank lines separate
// top-level namespaces.
func WriteNestedYAML(w io.Writer, entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	var b strings.Builder
	var prevParts []string
	for _, e := range sorted {
		parts := strings.Split(e.Key, ".")

		// Common parent segments with the previous key.
		common := 0
		maxParent := len(parts) - 1
		if len(prevParts)-1 < maxParent {
			maxParent = len(prevParts) - 1
		}
		for j := 0; j < maxParent; j++ {
			if parts[j] != prevParts[j] {
				break
			}
			common = j + 1
		}

		if len(prevParts) > 0 && parts[0] != prevParts[0] {
			b.WriteString("\n")
		}

		for j := common; j < len(parts)-1; j++ {
			b.WriteString(strings.Repeat("  ", j))
			b.WriteString(yamlKey(parts[j]))
			b.WriteString(":\n")
		}

		indent := strings.Repeat("  ", len(parts)-1)
		if e.Comment != "" {
			for _, line := range strings.Split(e.Comment, "\n") {
				b.WriteString(indent)
				b.WriteString("# ")
				b.WriteString(line)
				b.WriteString("\n")
			}
		}

		b.WriteString(indent)
		b.WriteString(yamlKey(parts[len(parts)-1]))
		b.WriteString(": ")
		scalar := yamlScalar(e.Value)
		if strings.Contains(scalar, "\n") {
			// Block scalar: re-indent the body to the current depth.
			lines := strings.Split(scalar, "\n")
			b.WriteString(lines[0])
			b.WriteString("\n")
			for _, line := range lines[1:] {
				trimmed := strings.TrimLeft(line, " ")
				if trimmed == "" {
					b.WriteString("\n")
					continue
				}
				b.WriteString(indent + "  ")
				b.WriteString(trimmed)
				b.WriteString("\n")
			}
		} else {
			b.WriteString(scalar)
			b.WriteString("\n")
		}

		prevParts = parts
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// yamlScalar formats s as a YAML scalar, quoting when needed.
func yamlScalar(s string) string {
	if s == "" {
		return "''"
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return strings.TrimRight(string(data), "\n")
}

// yamlKey formats a single path segment as a mapping key.
func yamlKey(s string) string {
	return yamlScalar(s)
}
