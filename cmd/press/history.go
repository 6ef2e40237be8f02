package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [- | file...]",
		Short: "Record changed posts in the history log and collapse it",
		Long: `Records the modification time of every post that changed since its last
history entry, then keeps one entry per post per day.

With "-" the candidate paths are read from stdin, one per line. With file
arguments only those files are considered. Otherwise the content directory
is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromStdin := len(args) == 1 && args[0] == "-"
			var candidates []string
			if !fromStdin {
				candidates = args
			}

			module, stop, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer stop()
			result, err := module.UpdateHistory(cmd.Context(), candidates, fromStdin)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Update != nil {
				fmt.Fprintf(out, "Recorded %d changes\n", len(result.Update.Appended))
			}
			if result.Collapse != nil {
				fmt.Fprintf(out, "Collapsed history: %d kept, %d dropped\n", result.Collapse.Kept, result.Collapse.Dropped)
			}
			return nil
		},
	}
}
