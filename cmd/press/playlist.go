package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func playlistCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "playlist <url>",
		Short: "Write a post listing the tracks of a Spotify playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, stop, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer stop()
			path, err := module.ImportPlaylist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}
