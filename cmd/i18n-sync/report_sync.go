package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/reconcile"
)

var (
	errInvariants = errors.New("reconciliation invariants failed")
	errMissing    = errors.New("missing keys found")
)

func (a *app) syncCommand() *cobra.Command {
	var strict, failOnMissing bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Full report: missing, unused, coverage and invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.checkFormat("text", "json"); err != nil {
				return err
			}
			report, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}
			if err := reportSync(cmd.OutOrStdout(), report, a.format); err != nil {
				return err
			}
			if strict && !report.Invariants.OK() {
				return errInvariants
			}
			if failOnMissing && report.Metrics.Missing > 0 {
				return fmt.Errorf("%w: %d", errMissing, report.Metrics.Missing)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when an invariant does not hold")
	cmd.Flags().BoolVar(&failOnMissing, "fail-on-missing", false, "Fail when keys are missing from the remote store")
	return cmd
}

func reportSync(w io.Writer, r *reconcile.Report, format string) error {
	if format == "json" {
		return writeJSON(w, r)
	}

	m := r.Metrics
	fmt.Fprintf(w, "Usages:        %d\n", m.Usages)
	fmt.Fprintf(w, "Local keys:    %d (%d%% found remotely)\n", m.LocalKeys, m.LocalCoverage)
	fmt.Fprintf(w, "Remote keys:   %d (%d%% used)\n", m.RemoteKeys, m.RemoteCoverage)
	fmt.Fprintf(w, "Patterns:      %d\n", len(r.Patterns))
	fmt.Fprintln(w)

	if err := outputGroups(w, r.Missing, format, "missing keys"); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := outputGroups(w, r.Unused, format, "unused keys"); err != nil {
		return err
	}
	if m.DynamicReview > 0 {
		fmt.Fprintln(w)
		if err := outputGroups(w, r.DynamicReviewRequired, format, "keys matched only by templates"); err != nil {
			return err
		}
	}
	if len(r.Patterns) > 0 && m.DynamicReview == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Note: keys matched by template patterns are counted as used.")
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Invariants:    %s\n", invariantStatus(r.Invariants))
	return nil
}

func invariantStatus(i reconcile.Invariants) string {
	switch {
	case i.OK():
		return "OK"
	case !i.LocalBalanced && !i.RemoteBalanced:
		return "FAIL (local, remote)"
	case !i.LocalBalanced:
		return "FAIL (local)"
	default:
		return "FAIL (remote)"
	}
}
