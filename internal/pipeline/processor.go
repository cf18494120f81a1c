// Package pipeline turns OCR documents into stored extraction jobs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/analyzer"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
	"github.com/joseph-ayodele/hoken-card-reader/internal/repository"
)

// Outcome is the result of one processed document.
type Outcome struct {
	JobID     uuid.UUID
	Source    string
	Kind      constants.DocKind
	Fields    analyzer.Result
	LineCount int
}

// Processor coordinates document decoding, extraction and job bookkeeping.
// Jobs are recorded only when a repository is configured.
type Processor struct {
	logger       *slog.Logger
	analyzers    *analyzer.Set
	jobs         repository.ExtractJobRepository
	fallbackKind constants.DocKind
}

func NewProcessor(
	logger *slog.Logger,
	analyzers *analyzer.Set,
	jobs repository.ExtractJobRepository,
	fallbackKind constants.DocKind,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if analyzers == nil {
		analyzers = analyzer.NewSet(analyzer.WithLogger(logger))
	}
	if fallbackKind == "" {
		fallbackKind = constants.KindMain
	}
	return &Processor{
		logger:       logger,
		analyzers:    analyzers,
		jobs:         jobs,
		fallbackKind: fallbackKind,
	}
}

// ProcessFile loads an OCR document from path and extracts it. A document
// that cannot be decoded is recorded as a failed job.
func (p *Processor) ProcessFile(ctx context.Context, path string) (Outcome, error) {
	doc, err := ocr.LoadDocument(path, p.fallbackKind)
	if err != nil {
		p.logger.Error("processor.load.failed", "source", path, "err", err)
		out := Outcome{Source: path, Kind: p.fallbackKind}
		if p.jobs != nil {
			job, startErr := p.jobs.Start(ctx, path, p.fallbackKind, constants.JobStatusRunning)
			if startErr != nil {
				p.logger.Error("processor.store.failed", "source", path, "err", startErr)
				return out, err
			}
			out.JobID = job.ID
			if finErr := p.jobs.FinishFailure(ctx, job.ID, err.Error()); finErr != nil {
				p.logger.Error("processor.store.failed", "source", path, "job_id", job.ID, "err", finErr)
			}
		}
		return out, err
	}
	return p.ProcessDocument(ctx, path, doc)
}

// ProcessDocument extracts fields from an already decoded document. Absent
// fields are a normal outcome; errors come only from the kind lookup, the
// context and the job store.
func (p *Processor) ProcessDocument(ctx context.Context, source string, doc ocr.Document) (Outcome, error) {
	out := Outcome{Source: source, Kind: doc.Kind, LineCount: len(doc.Lines)}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	a, ok := p.analyzers.For(doc.Kind)
	if !ok {
		return out, common.NewAppError("UNSUPPORTED_KIND", fmt.Sprintf("no analyzer for %q", doc.Kind), common.ErrUnsupportedKind)
	}

	sessionID := uuid.NewString()
	ctx = common.WithSessionID(ctx, sessionID)
	log := p.logger.With("session_id", sessionID, "source", source, "kind", doc.Kind)

	if p.jobs != nil {
		job, err := p.jobs.Start(ctx, source, doc.Kind, constants.JobStatusRunning)
		if err != nil {
			return out, err
		}
		out.JobID = job.ID
		log = log.With("job_id", job.ID)
	}

	out.Fields = a.Fit(doc.Lines)
	log.Debug("processor.extract.ok", "fields", len(out.Fields), "lines", out.LineCount)

	if p.jobs != nil {
		if err := p.jobs.FinishSuccess(ctx, out.JobID, out.Fields, out.LineCount); err != nil {
			log.Error("processor.store.failed", "err", err)
			return out, err
		}
	}
	log.Info("processed document", "fields", len(out.Fields))
	return out, nil
}
