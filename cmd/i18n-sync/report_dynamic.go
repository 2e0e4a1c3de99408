package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/reconcile"
)

func (a *app) dynamicCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dynamic",
		Short: "Template keys and the remote keys they match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.checkFormat("text", "json"); err != nil {
				return err
			}
			report, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return reportDynamic(cmd.OutOrStdout(), report.Patterns, a.format)
		},
	}
}

func reportDynamic(w io.Writer, patterns []reconcile.PatternMatch, format string) error {
	if format == "json" {
		return writeJSON(w, patterns)
	}

	if len(patterns) == 0 {
		fmt.Fprintln(w, "No dynamic key patterns found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d dynamic key patterns:\n\n", len(patterns))
	for _, p := range patterns {
		fmt.Fprintf(w, "  %s\n", p.Pattern)
		fmt.Fprintf(w, "    source:  %s:%d\n", p.File, p.Line)
		fmt.Fprintf(w, "    matches: %d keys\n", len(p.MatchedKeys))
		for _, k := range p.MatchedKeys {
			fmt.Fprintf(w, "      %s\n", k)
		}
		fmt.Fprintln(w)
	}
	return nil
}
