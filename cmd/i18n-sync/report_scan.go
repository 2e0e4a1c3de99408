package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/usage"
)

func (a *app) scanCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Usage records found by the built-in scanner",
		Long: `Prints the usage records found in the configured source directories.
With --out the records are written to a JSON file that can be passed to
the other commands with --usages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.checkFormat("text", "json"); err != nil {
				return err
			}
			records, err := a.loadUsages(cmd.Context())
			if err != nil {
				return err
			}
			if out != "" {
				return usage.Write(a.fs, a.abs(a.dir, out), records)
			}
			return reportScan(cmd.OutOrStdout(), records, a.format)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write the records to this JSON file")
	return cmd
}

func reportScan(w io.Writer, records []usage.Record, format string) error {
	if format == "json" {
		if records == nil {
			records = []usage.Record{}
		}
		return writeJSON(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No usage records found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d usage records:\n", len(records))
	for _, r := range records {
		scope := r.BindingType.String()
		if r.Namespace != "" {
			scope += " " + r.Namespace
		}
		key := r.Key
		if r.IsDynamic {
			key = r.Template() + " (dynamic)"
		}
		fmt.Fprintf(w, "  %-40s %-24s %s\n", r.Location(), scope, key)
	}
	return nil
}
