package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/reconcile"
)

func (a *app) referencesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "references",
		Short: "Where each resolved key is used (file:line)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.checkFormat("text", "json"); err != nil {
				return err
			}
			report, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return reportReferences(cmd.OutOrStdout(), report.References, a.format)
		},
	}
}

func reportReferences(w io.Writer, refs []reconcile.Reference, format string) error {
	if format == "json" {
		return writeJSON(w, refs)
	}

	for _, r := range refs {
		fmt.Fprintf(w, "%s:\n", r.Key)
		for _, loc := range r.Locations {
			fmt.Fprintf(w, "  %s\n", loc)
		}
	}
	return nil
}
