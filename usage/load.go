package usage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads scanner output from path. Files ending in .yaml or .yml are
// decoded as a YAML sequence, everything else as a JSON array. Every record
// is validated and the result is sorted by file, line and key.
func Load(fs afero.Fs, path string) ([]Record, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading usages: %w", err)
	}

	var records []Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid record in %s: %w", path, err)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
	return records, nil
}

// Write encodes records as indented JSON, the format Load reads back.
func Write(fs afero.Fs, path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling usages: %w", err)
	}
	return afero.WriteFile(fs, path, append(data, '\n'), 0o644)
}
