package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// RemoveKeys deletes the given leaf paths from the document at path and
// prunes parents left empty. YAML documents keep their comments and key
// order. The file is only rewritten when something was removed.
func RemoveKeys(fs afero.Fs, path string, keys []string) (int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, err
	}

	var out []byte
	var removed int
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, removed, err = removeYAML(data, keys)
	default:
		out, removed, err = removeJSON(data, keys)
	}
	if err != nil {
		return 0, fmt.Errorf("removing keys from %s: %w", path, err)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := afero.WriteFile(fs, path, out, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return removed, nil
}

func removeYAML(data []byte, keys []string) ([]byte, int, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, 0, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, 0, ErrNotMapping
	}

	removed := 0
	for _, key := range keys {
		if removeNode(root, strings.Split(key, ".")) {
			removed++
		}
	}
	if removed == 0 {
		return nil, 0, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, 0, err
	}
	if err := enc.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), removed, nil
}

// removeNode removes a dotted path from a mapping node, pruning empty
// parents. Returns true if the path was found.
func removeNode(node *yaml.Node, parts []string) bool {
	if node.Kind != yaml.MappingNode || len(parts) == 0 {
		return false
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value != parts[0] {
			continue
		}
		value := node.Content[i+1]
		if len(parts) == 1 {
			node.Content = append(node.Content[:i], node.Content[i+2:]...)
			return true
		}
		if removeNode(value, parts[1:]) {
			if value.Kind == yaml.MappingNode && len(value.Content) == 0 {
				node.Content = append(node.Content[:i], node.Content[i+2:]...)
			}
			return true
		}
	}
	return false
}

func removeJSON(data []byte, keys []string) ([]byte, int, error) {
	t, err := Parse(data, "json")
	if err != nil {
		return nil, 0, err
	}
	removed := 0
	for _, key := range keys {
		if removeEntry(t, strings.Split(key, ".")) {
			removed++
		}
	}
	if removed == 0 {
		return nil, 0, nil
	}
	out, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, 0, err
	}
	return append(out, '\n'), removed, nil
}

func removeEntry(node map[string]any, parts []string) bool {
	value, ok := node[parts[0]]
	if !ok {
		return false
	}
	if len(parts) == 1 {
		delete(node, parts[0])
		return true
	}
	child, ok := value.(map[string]any)
	if !ok || !removeEntry(child, parts[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(node, parts[0])
	}
	return true
}
