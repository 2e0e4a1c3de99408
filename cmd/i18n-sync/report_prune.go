package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/tree"
)

var errNoTreeFile = errors.New("prune needs a local tree file (--tree or tree_file)")

func (a *app) pruneCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove unused keys from the local tree file",
		Long: `Removes the keys reported as unused from the local tree file and prunes
parents left empty. Keys held for review because only a template matches
them are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.TreeFile == "" {
				return errNoTreeFile
			}
			report, err := a.reconcile(cmd.Context())
			if err != nil {
				return err
			}

			keys := report.UnusedKeys()
			w := cmd.OutOrStdout()
			if dryRun {
				for _, k := range keys {
					fmt.Fprintln(w, k)
				}
				return nil
			}

			path := a.path(a.cfg.TreeFile)
			removed, err := tree.RemoveKeys(a.fs, path, keys)
			if err != nil {
				return err
			}
			a.logger.InfoContext(cmd.Context(), "pruned tree file", "file", path, "removed", removed)
			fmt.Fprintf(w, "Removed %d keys from %s\n", removed, a.cfg.TreeFile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the keys that would be removed")
	return cmd
}
