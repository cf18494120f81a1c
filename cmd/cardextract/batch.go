package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/hoken-card-reader/internal/async"
	"github.com/joseph-ayodele/hoken-card-reader/internal/export"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ingest"
	"github.com/joseph-ayodele/hoken-card-reader/internal/pipeline"
	"github.com/joseph-ayodele/hoken-card-reader/internal/repository"
)

func newBatchCmd(appFn func() *app) *cobra.Command {
	var (
		out        string
		workers    int
		skipHidden bool
	)
	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Process every OCR document under DIR and export the results to XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx := cmd.Context()
			dir := args[0]
			if out == "" {
				out = filepath.Join(filepath.Dir(filepath.Clean(dir)), "cards.xlsx")
			}
			if workers <= 0 {
				workers = a.cfg.Worker.Workers
			}

			paths, stats, err := ingest.ScanDirectory(dir, skipHidden, a.logger)
			if err != nil {
				return err
			}

			var ok, failed atomic.Int64
			q := async.NewProcessorQueue(a.proc, a.logger,
				async.WithWorkers(workers),
				async.WithQueueSize(a.cfg.Worker.QueueSize),
				async.WithProcessTimeout(a.cfg.Worker.ProcessTimeout),
				async.WithResultFunc(func(_ async.Job, _ pipeline.Outcome, err error) {
					if err != nil {
						failed.Add(1)
						return
					}
					ok.Add(1)
				}),
			)
			start := time.Now()
			for _, p := range paths {
				if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil {
					q.Shutdown(context.Background())
					return err
				}
			}
			q.Shutdown(ctx)
			a.logger.Info("batch processed",
				"dir", dir,
				"documents", stats.Matched,
				"ok", ok.Load(),
				"failed", failed.Load(),
				"duration_ms", time.Since(start).Milliseconds(),
			)

			data, err := export.NewService(a.jobs, a.logger).ExportJobsXLSX(ctx, repository.ListFilter{})
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
	cmd.Flags().StringVarP(&out, "out", "o", "", "output XLSX path (default: cards.xlsx next to DIR)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker count (default: WORKERS)")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip hidden files and directories")
	return cmd
}
