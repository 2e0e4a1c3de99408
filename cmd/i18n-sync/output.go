package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/better-i18n/i18n-sync/reconcile"
)

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputStrings prints a list of strings in text or JSON format.
func outputStrings(w io.Writer, items []string, format, label string) error {
	if format == "json" {
		if items == nil {
			items = []string{}
		}
		return writeJSON(w, items)
	}

	if len(items) == 0 {
		fmt.Fprintf(w, "No %s found.\n", label)
		return nil
	}

	fmt.Fprintf(w, "Found %d %s:\n", len(items), label)
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item)
	}
	return nil
}

// outputGroups prints namespace groups in text or JSON format. In text form
// each key is followed by its display text or its first usage location.
func outputGroups(w io.Writer, groups []reconcile.Group, format, label string) error {
	if format == "json" {
		return writeJSON(w, groups)
	}

	total := 0
	for _, g := range groups {
		total += len(g.Keys)
	}
	if total == 0 {
		fmt.Fprintf(w, "No %s found.\n", label)
		return nil
	}

	fmt.Fprintf(w, "Found %d %s:\n", total, label)
	for _, g := range groups {
		fmt.Fprintf(w, "\n  %s (%d)\n", g.Namespace, len(g.Keys))
		for _, e := range g.Keys {
			switch {
			case e.Text != "":
				fmt.Fprintf(w, "    %s  %q\n", e.Key, e.Text)
			case len(e.Locations) > 0:
				fmt.Fprintf(w, "    %s  (%s)\n", e.Key, e.Locations[0])
			default:
				fmt.Fprintf(w, "    %s\n", e.Key)
			}
		}
	}
	return nil
}
