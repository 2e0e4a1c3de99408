package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/reconcile"
	"github.com/better-i18n/i18n-sync/tree"
)

func (a *app) missingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "missing",
		Short: "Keys used in code but absent from the remote store",
		Long: `Lists keys used in code but absent from the remote store, grouped by
namespace. With --format yaml the keys are written as a nested YAML skeleton
with empty values that can be filled in and uploaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.checkFormat("text", "json", "yaml"); err != nil {
				return err
			}
			report, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return reportMissing(cmd.OutOrStdout(), report, a.format)
		},
	}
}

func reportMissing(w io.Writer, r *reconcile.Report, format string) error {
	if format != "yaml" {
		return outputGroups(w, r.Missing, format, "missing keys")
	}

	var entries []tree.Entry
	for _, g := range r.Missing {
		for _, e := range g.Keys {
			entry := tree.Entry{Key: e.Key}
			if len(e.Locations) > 0 {
				entry.Comment = "used at " + strings.Join(e.Locations, ", ")
			}
			entries = append(entries, entry)
		}
	}
	return tree.WriteNestedYAML(w, entries)
}
