// Package tree models the hierarchical translation document served by the
// remote store and flattens it into leaf and container key paths.
package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var ErrNotMapping = errors.New("translation document root is not a mapping")

// Tree is a decoded translation document: namespace -> nested mapping -> ...
// -> primitive value.
type Tree map[string]any

// Flat holds the key paths derived from a Tree.
type Flat struct {
	// Leaves maps every leaf path to its display text.
	Leaves map[string]string
	// Containers holds every non-leaf path with at least one descendant leaf.
	Containers map[string]struct{}
}

// Flatten walks t depth-first and classifies every path as a leaf or a
// container. The root is never a path. Mappings without any descendant leaf
// are neither.
func Flatten(t Tree) Flat {
	flat := Flat{
		Leaves:     make(map[string]string),
		Containers: make(map[string]struct{}),
	}
	flattenInto("", t, &flat)
	return flat
}

// flattenInto returns true if node has at least one descendant leaf.
func flattenInto(prefix string, node map[string]any, flat *Flat) bool {
	found := false
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := asMapping(v); ok {
			if flattenInto(key, child, flat) {
				flat.Containers[key] = struct{}{}
				found = true
			}
			continue
		}
		flat.Leaves[key] = displayText(v)
		found = true
	}
	return found
}

// asMapping normalises the mapping shapes produced by the JSON and YAML
// decoders and by trees built in code.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Tree:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func displayText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, displayText(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// SortedLeaves returns the leaf paths of f in ascending order.
func (f Flat) SortedLeaves() []string {
	keys := make([]string, 0, len(f.Leaves))
	for k := range f.Leaves {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsLeaf reports whether path is a leaf of f.
func (f Flat) IsLeaf(path string) bool {
	_, ok := f.Leaves[path]
	return ok
}

// IsContainer reports whether path is a container of f.
func (f Flat) IsContainer(path string) bool {
	_, ok := f.Containers[path]
	return ok
}

// Parse decodes a translation document. Format is "json" or "yaml".
func Parse(data []byte, format string) (Tree, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var raw any
	var err error
	switch format {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &raw)
	case "json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported tree format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s tree: %w", format, err)
	}
	if raw == nil {
		return Tree{}, nil
	}

	root, ok := asMapping(raw)
	if !ok {
		return nil, ErrNotMapping
	}
	return normalise(root), nil
}

// normalise converts nested map[any]any nodes into map[string]any so that
// callers only ever see one mapping type.
func normalise(node map[string]any) Tree {
	out := make(Tree, len(node))
	for k, v := range node {
		if child, ok := asMapping(v); ok {
			out[k] = map[string]any(normalise(child))
			continue
		}
		out[k] = v
	}
	return out
}

// Load reads a translation document from fs, choosing the decoder from the
// file extension.
func Load(fs afero.Fs, path string) (Tree, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	t, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}
