package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate --track TRACK S1 S2 S3 S4",
		Short: "Evaluate a track choice against four scores",
		Example: `  orientbot evaluate --track Sciences 12 14 10 16
  orientbot evaluate --track "Économie et services" 9 9,5 10 10.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			trackLabel, _ := cmd.Flags().GetString("track")

			_, svc, err := setup(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer svc.Stop()

			res, err := svc.Evaluate(cmd.Context(), trackLabel, parseScores(args)...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringP("track", "t", "", "Track label, as listed by 'orientbot tracks'")
	return cmd
}

// parseScores converts arguments to scores. Unparseable values become NaN
// and are reported by the evaluator as out of range. A decimal comma is
// accepted.
func parseScores(args []string) []float64 {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(a), ",", "."), 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
