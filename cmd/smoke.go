package main

import (
	"fmt"
	"os"
	"time"

	"github.com/okian/orientbot/internal/smoke"
	"github.com/okian/orientbot/pkg/logger"
	"github.com/spf13/cobra"
)

func newSmokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run end-to-end checks against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg smoke.Config
			cfg.BaseURL, _ = cmd.Flags().GetString("url")
			cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
			cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
			cfg.Verbose, _ = cmd.Flags().GetBool("verbose")

			if err := logger.InitWith(os.Stderr, "text"); err != nil {
				return err
			}

			report, err := smoke.Run(cmd.Context(), cfg, smoke.Scenarios())
			if report != nil {
				out := cmd.OutOrStdout()
				for _, o := range report.Outcomes {
					status := "PASS"
					if !o.Passed {
						status = "FAIL"
					}
					fmt.Fprintf(out, "%s  %-22s %s\n", status, o.Name, o.Duration.Round(time.Millisecond))
					if o.Err != nil {
						fmt.Fprintf(out, "      %v\n", o.Err)
					}
				}
				fmt.Fprintf(out, "%d passed, %d failed in %s\n", report.Passed, report.Failed, report.Duration.Round(time.Millisecond))
			}
			return err
		},
	}
	cmd.Flags().String("url", smoke.DefaultBaseURL, "Base URL of the service")
	cmd.Flags().Duration("timeout", smoke.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().Int("concurrency", smoke.DefaultConcurrency, "Scenarios in flight at once")
	cmd.Flags().BoolP("verbose", "v", false, "Log passing scenarios")
	return cmd
}
