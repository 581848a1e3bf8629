package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback [TEXT...]",
		Short: "Classify free-text feedback",
		Long:  "Classify free-text feedback. Without arguments the text is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			_, svc, err := setup(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer svc.Stop()

			res, err := svc.Classify(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && !res.Empty {
				fmt.Fprintf(cmd.OutOrStdout(), "class=%s language=%s translated=%t polarity=%.2f degraded=%t\n",
					res.Class, res.Language, res.Translated, res.Polarity, res.Degraded)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Print classification details")
	return cmd
}
