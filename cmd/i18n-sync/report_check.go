package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/reconcile"
)

var errChecksFailed = errors.New("checks failed")

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Lint check: missing + unused + invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return reportCheck(cmd.OutOrStdout(), report)
		},
	}
}

func reportCheck(w io.Writer, r *reconcile.Report) error {
	passed := true
	printResult := func(label string, count int) {
		status := "OK"
		if count > 0 {
			status = "FAIL"
			passed = false
		}
		fmt.Fprintf(w, "  %-30s %3d  %s\n", label+":", count, status)
	}

	broken := 0
	if !r.Invariants.LocalBalanced {
		broken++
	}
	if !r.Invariants.RemoteBalanced {
		broken++
	}

	printResult("missing keys", r.Metrics.Missing)
	printResult("unused keys", r.Metrics.Unused)
	printResult("keys needing review", r.Metrics.DynamicReview)
	printResult("broken invariants", broken)

	if passed {
		fmt.Fprintln(w, "All checks passed.")
		return nil
	}
	return errChecksFailed
}
