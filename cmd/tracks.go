package main

import (
	"fmt"
	"strings"

	app "github.com/okian/orientbot/internal/app"
	"github.com/spf13/cobra"
)

func newTracksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tracks",
		Short: "List tracks and their subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range app.New().Tracks() {
				fmt.Fprintf(out, "%s: %s\n", t.Track, strings.Join(t.Subjects[:], ", "))
			}
			return nil
		},
	}
}
