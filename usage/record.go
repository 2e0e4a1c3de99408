// Package usage defines the key-usage record produced by source scanners and
// consumed by the reconciliation engine.
package usage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownBinding = errors.New("unknown binding type")
	ErrEmptyKey       = errors.New("empty translation key")
	ErrNoNamespace    = errors.New("bound-scoped record without namespace")
)

// BindingType describes how the translator used at a call site was obtained.
type BindingType int

const (
	// BoundScoped translators were created with an explicit namespace prefix.
	BoundScoped BindingType = iota + 1
	// RootScoped translators have no namespace; keys are full paths.
	RootScoped
	// UnknownScoped translators have a scope that could not be determined
	// statically; keys are fragments of unknown depth.
	UnknownScoped
	// Unbound means the translator reference itself could not be resolved.
	Unbound
)

var bindingNames = map[BindingType]string{
	BoundScoped:   "bound-scoped",
	RootScoped:    "root-scoped",
	UnknownScoped: "unknown-scoped",
	Unbound:       "unbound",
}

func (b BindingType) String() string {
	if name, ok := bindingNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BindingType(%d)", int(b))
}

// ParseBindingType parses the hyphenated name of a binding type.
func ParseBindingType(s string) (BindingType, error) {
	for b, name := range bindingNames {
		if strings.EqualFold(s, name) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBinding, s)
}

func (b BindingType) MarshalText() ([]byte, error) {
	name, ok := bindingNames[b]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBinding, int(b))
	}
	return []byte(name), nil
}

func (b *BindingType) UnmarshalText(text []byte) error {
	parsed, err := ParseBindingType(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Record is one statically detected reference to a translation key.
type Record struct {
	Key         string      `json:"key" yaml:"key"`
	BindingType BindingType `json:"bindingType" yaml:"bindingType"`
	Namespace   string      `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	IsDynamic   bool        `json:"isDynamic,omitempty" yaml:"isDynamic,omitempty"`
	Pattern     string      `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	File        string      `json:"file" yaml:"file"`
	Line        int         `json:"line" yaml:"line"`
}

// Location returns the provenance of the record as file:line.
func (r Record) Location() string {
	return fmt.Sprintf("%s:%d", r.File, r.Line)
}

// Template returns the interpolation template of a dynamic record, falling
// back to the key when the scanner did not set a separate pattern.
func (r Record) Template() string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.Key
}

// Validate reports whether the record satisfies the scanner contract.
func (r Record) Validate() error {
	if r.Key == "" && !(r.IsDynamic && r.Pattern != "") {
		return fmt.Errorf("%s: %w", r.Location(), ErrEmptyKey)
	}
	if _, ok := bindingNames[r.BindingType]; !ok {
		return fmt.Errorf("%s: %w: %d", r.Location(), ErrUnknownBinding, int(r.BindingType))
	}
	if r.BindingType == BoundScoped && r.Namespace == "" {
		return fmt.Errorf("%s: %w", r.Location(), ErrNoNamespace)
	}
	return nil
}

// Less orders records by file, line and key.
func Less(a, b Record) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Key < b.Key
}
