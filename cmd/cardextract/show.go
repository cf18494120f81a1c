package main

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
)

func newShowCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Print one stored extraction job as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			v := common.NewValidator().Field("job_id", args[0], common.Required, common.UUID)
			if v.HasErrors() {
				return v.Error()
			}
			job, err := a.jobs.GetByID(cmd.Context(), uuid.MustParse(args[0]))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(job)
		},
	}
}
