package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/hoken-card-reader/internal/async"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ingest"
	"github.com/joseph-ayodele/hoken-card-reader/internal/pipeline"
)

func newWatchCmd(appFn func() *app) *cobra.Command {
	var initialScan bool
	cmd := &cobra.Command{
		Use:   "watch [DIR...]",
		Short: "Process OCR documents as they are dropped into directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			roots := args
			if len(roots) == 0 && a.cfg.Watch.Dir != "" {
				roots = []string{a.cfg.Watch.Dir}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       roots,
				InitialScan: initialScan,
				Debounce:    a.cfg.Watch.Debounce,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}

			q := async.NewProcessorQueue(a.proc, a.logger,
				async.WithWorkers(a.cfg.Worker.Workers),
				async.WithQueueSize(a.cfg.Worker.QueueSize),
				async.WithProcessTimeout(a.cfg.Worker.ProcessTimeout),
				async.WithResultFunc(func(job async.Job, out pipeline.Outcome, err error) {
					if err != nil {
						a.logger.Warn("watched document failed", "source", job.Path, "err", err)
						return
					}
					a.logger.Info("watched document processed", "source", job.Path, "job_id", out.JobID, "fields", len(out.Fields))
				}),
			)
			defer q.Shutdown(context.Background())

			a.logger.Info("watching for documents", "roots", roots)
			for {
				select {
				case p, ok := <-events:
					if !ok {
						return nil
					}
					if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil {
						a.logger.Warn("enqueue failed", "source", p, "err", err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					a.logger.Warn("watcher reported an error", "err", err)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&initialScan, "initial-scan", true, "process documents already present at start")
	return cmd
}
