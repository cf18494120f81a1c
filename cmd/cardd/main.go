// Command cardd serves card field extraction over gRPC.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/async"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/analyzer"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ingest"
	"github.com/joseph-ayodele/hoken-card-reader/internal/insurers"
	"github.com/joseph-ayodele/hoken-card-reader/internal/pipeline"
	"github.com/joseph-ayodele/hoken-card-reader/internal/repository"
	"github.com/joseph-ayodele/hoken-card-reader/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("cardd stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	known, err := insurers.Load(cfg.Extract.InsurerListPath, logger)
	if err != nil {
		return err
	}

	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("opening DB: %w", err)
	}
	defer db.Close(logger)

	if err := db.HealthCheck(ctx, cfg.Database.DialTimeout, logger); err != nil {
		return fmt.Errorf("DB health failed: %w", err)
	}
	logger.Info("DB health OK")

	jobs := repository.NewExtractJobRepository(db, logger)
	set := analyzer.NewSet(analyzer.WithKnownList(known), analyzer.WithLogger(logger))
	proc := pipeline.NewProcessor(logger, set, jobs, constants.KindMain)

	// gRPC server
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(server.LoggingInterceptor(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	server.RegisterCardExtractorServer(grpcServer, server.NewExtractor(proc, constants.KindMain, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		hs.Shutdown()
		stopped := make(chan struct{})
		go func() { grpcServer.GracefulStop(); close(stopped) }()
		select {
		case <-stopped:
		case <-time.After(10 * time.Second):
			grpcServer.Stop()
		}
		return nil
	})
	if cfg.Watch.Dir != "" {
		g.Go(func() error { return watch(gctx, cfg, proc, logger) })
	}
	return g.Wait()
}

// watch processes documents dropped into WATCH_DIR alongside the server.
func watch(ctx context.Context, cfg *common.Config, proc *pipeline.Processor, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{cfg.Watch.Dir},
		InitialScan: true,
		Debounce:    cfg.Watch.Debounce,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	q := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
	)
	defer q.Shutdown(context.Background())

	for {
		select {
		case p, ok := <-events:
			if !ok {
				return nil
			}
			if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("enqueue failed", "source", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher reported an error", "error", err)
		}
	}
}
