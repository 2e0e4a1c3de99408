package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/better-i18n/i18n-sync/tree"
)

func (a *app) staleCommand() *cobra.Command {
	var locale, target string
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "Keys in a target locale absent from the source tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.checkFormat("text", "json"); err != nil {
				return err
			}
			if locale == "" && target == "" {
				return fmt.Errorf("--locale or --target is required")
			}
			ctx := cmd.Context()

			source, err := a.loadTree(ctx)
			if err != nil {
				return err
			}
			var translated tree.Tree
			if target != "" {
				translated, err = tree.Load(a.fs, a.abs(a.dir, target))
			} else {
				translated, err = a.fetchMessages(ctx, locale)
			}
			if err != nil {
				return err
			}

			label := "stale keys"
			if locale != "" {
				label += " in " + locale
			}
			return outputStrings(cmd.OutOrStdout(), staleKeys(source, translated), a.format, label)
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "Target locale to fetch from the CDN")
	cmd.Flags().StringVar(&target, "target", "", "Read the target tree from this file instead")
	return cmd
}

// staleKeys returns the leaves of translated that source does not have.
func staleKeys(source, translated tree.Tree) []string {
	src := tree.Flatten(source)
	var stale []string
	for _, k := range tree.Flatten(translated).SortedLeaves() {
		if !src.IsLeaf(k) {
			stale = append(stale, k)
		}
	}
	return stale
}
