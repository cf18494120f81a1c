package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/hoken-card-reader/internal/repository"
)

func newHealthCmd(appFn func() *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the job store connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			if err := a.db.HealthCheck(cmd.Context(), timeout, a.logger); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			jobs, err := a.jobs.List(cmd.Context(), repository.ListFilter{})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (%s, %d jobs)\n", a.db.Dialect, len(jobs))
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")
	return cmd
}
