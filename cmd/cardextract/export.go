package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
	"github.com/joseph-ayodele/hoken-card-reader/internal/export"
	"github.com/joseph-ayodele/hoken-card-reader/internal/repository"
)

func newExportCmd(appFn func() *app) *cobra.Command {
	var (
		out    string
		kind   string
		status string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored extraction jobs to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			filter := repository.ListFilter{Status: constants.JobStatus(status), Limit: limit}
			if kind != "" {
				k, ok := constants.ParseKind(kind)
				if !ok {
					return common.NewAppError("INVALID_FILTER", "unknown kind "+kind, common.ErrUnsupportedKind)
				}
				filter.Kind = k
			}
			data, err := export.NewService(a.jobs, a.logger).ExportJobsXLSX(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			a.logger.Info("export written", "path", out, "bytes", len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "cards.xlsx", "output XLSX path")
	cmd.Flags().StringVar(&kind, "filter-kind", "", "only jobs of this card kind")
	cmd.Flags().StringVar(&status, "status", "", "only jobs with this status (OK, FAILED, ...)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 = all)")
	return cmd
}
