package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/reconcile"
)

func (a *app) unusedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unused",
		Short: "Remote keys that no usage resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.checkFormat("text", "json"); err != nil {
				return err
			}
			report, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return reportUnused(cmd.OutOrStdout(), report, a.format)
		},
	}
}

type unusedReport struct {
	Unused                []reconcile.Group `json:"unused"`
	DynamicReviewRequired []reconcile.Group `json:"dynamicReviewRequired"`
}

func reportUnused(w io.Writer, r *reconcile.Report, format string) error {
	if format == "json" {
		return writeJSON(w, unusedReport{
			Unused:                r.Unused,
			DynamicReviewRequired: r.DynamicReviewRequired,
		})
	}

	if err := outputGroups(w, r.Unused, format, "unused keys"); err != nil {
		return err
	}
	if r.Metrics.DynamicReview > 0 {
		fmt.Fprintln(w)
		return outputGroups(w, r.DynamicReviewRequired, format, "keys matched only by templates")
	}
	return nil
}
