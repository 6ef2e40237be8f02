package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func buildCmd(opts *rootOptions) *cobra.Command {
	var skipHistory bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Update the history and regenerate the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, stop, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer stop()
			result, err := module.Build(cmd.Context(), skipHistory)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages and %d static files in %s\n",
				len(result.Pages), result.StaticFiles, result.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipHistory, "skip-history", false, "render from the history log without updating it")
	return cmd
}
