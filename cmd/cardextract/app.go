package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/analyzer"
	"github.com/joseph-ayodele/hoken-card-reader/internal/insurers"
	"github.com/joseph-ayodele/hoken-card-reader/internal/pipeline"
	"github.com/joseph-ayodele/hoken-card-reader/internal/repository"
)

type globalFlags struct {
	dbURL        string
	inmem        bool
	insurerList  string
	fallbackKind string
	verbose      bool
}

// app holds the wiring shared by every subcommand.
type app struct {
	cfg    *common.Config
	logger *slog.Logger
	db     *repository.DB
	jobs   repository.ExtractJobRepository
	proc   *pipeline.Processor
}

func newApp(ctx context.Context, cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cfg := common.LoadConfig()
	if flags.dbURL != "" {
		cfg.Database.DSN = flags.dbURL
	}
	if flags.inmem {
		cfg.Database.DSN = ":memory:"
	}
	if flags.insurerList != "" {
		cfg.Extract.InsurerListPath = flags.insurerList
	}
	level := cfg.LogLevel
	if flags.verbose {
		level = slog.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// stdout carries command output
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	fallback := constants.KindMain
	if flags.fallbackKind != "" {
		k, ok := constants.ParseKind(flags.fallbackKind)
		if !ok {
			return nil, common.NewAppError("CONFIG_ERROR", "unknown --kind "+flags.fallbackKind, common.ErrUnsupportedKind)
		}
		fallback = k
	}

	known, err := insurers.Load(cfg.Extract.InsurerListPath, logger)
	if err != nil {
		return nil, err
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
		return nil, err
	}
	jobs := repository.NewExtractJobRepository(db, logger)
	set := analyzer.NewSet(analyzer.WithKnownList(known), analyzer.WithLogger(logger))

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		jobs:   jobs,
		proc:   pipeline.NewProcessor(logger, set, jobs, fallback),
	}, nil
}

func (a *app) Close() {
	if a != nil && a.db != nil {
		a.db.Close(a.logger)
	}
}
