// Package project locates the root of the codebase being synchronised.
package project

import (
	"errors"
	"path/filepath"

	"github.com/spf13/afero"
)

var ErrNoRoot = errors.New("could not find project root (no package.json or i18n-sync.toml found)")

// markers identify a project root, in order of preference.
var markers = []string{"i18n-sync.toml", "package.json"}

// FindRoot walks up from start looking for a directory that contains one of
// the root markers.
func FindRoot(fs afero.Fs, start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		for _, m := range markers {
			if ok, _ := afero.Exists(fs, filepath.Join(dir, m)); ok {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoRoot
		}
		dir = parent
	}
}
