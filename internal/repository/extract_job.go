package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
	"github.com/joseph-ayodele/hoken-card-reader/internal/entity"
)

// timestamps are stored as fixed-width UTC text so they sort as strings
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type ExtractJobRepository interface {
	Start(ctx context.Context, sourcePath string, kind constants.DocKind, status constants.JobStatus) (*entity.ExtractJob, error)
	FinishSuccess(ctx context.Context, jobID uuid.UUID, fields map[constants.FieldTag]string, lineCount int) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.ExtractJob, error)
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	Kind   constants.DocKind
	Status constants.JobStatus
	Limit  int
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log, now: time.Now}
}

func (r *extractJobRepo) Start(ctx context.Context, sourcePath string, kind constants.DocKind, status constants.JobStatus) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Kind:       kind,
		Status:     status,
		StartedAt:  r.now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO extraction_job (id, source_path, kind, status, started_at) VALUES (?, ?, ?, ?, ?)`),
		job.ID.String(), job.SourcePath, string(job.Kind), string(job.Status), job.StartedAt.Format(timeLayout))
	if err != nil {
		r.log.Error("extract_job start failed", "source", sourcePath, "err", err)
		return nil, common.NewAppError("DB_ERROR", "start extract job", errors.Join(common.ErrDatabase, err))
	}
	r.log.Info("extract_job started", "job_id", job.ID, "source", sourcePath, "kind", kind)
	return job, nil
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, fields map[constants.FieldTag]string, lineCount int) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return common.WrapError(err, "encode fields")
	}
	err = r.update(ctx, jobID,
		`UPDATE extraction_job SET status = ?, finished_at = ?, fields_json = ?, line_count = ?, error_message = NULL WHERE id = ?`,
		string(constants.JobStatusOK), r.now().UTC().Format(timeLayout), string(b), lineCount, jobID.String())
	if err != nil {
		r.log.Error("extract_job finish(OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (OK)", "job_id", jobID, "fields", len(fields))
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	err := r.update(ctx, jobID,
		`UPDATE extraction_job SET status = ?, finished_at = ?, error_message = ? WHERE id = ?`,
		string(constants.JobStatusFailed), r.now().UTC().Format(timeLayout), message, jobID.String())
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) update(ctx context.Context, jobID uuid.UUID, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return common.NewAppError("DB_ERROR", "update extract job", errors.Join(common.ErrDatabase, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("NOT_FOUND", fmt.Sprintf("extract job %s", jobID), common.ErrNotFound)
	}
	return nil
}

const selectJob = `SELECT id, source_path, kind, status, started_at, finished_at, error_message, fields_json, line_count FROM extraction_job`

func (r *extractJobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	row := r.db.QueryRowContext(ctx, r.db.Rebind(selectJob+` WHERE id = ?`), jobID.String())
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("extract job %s", jobID), common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "get extract job", errors.Join(common.ErrDatabase, err))
	}
	return job, nil
}

func (r *extractJobRepo) List(ctx context.Context, filter ListFilter) ([]*entity.ExtractJob, error) {
	var (
		where []string
		args  []any
	)
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	q := selectJob
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY started_at, id"
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(q), args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list extract jobs", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*entity.ExtractJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan extract job", errors.Join(common.ErrDatabase, err))
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "list extract jobs", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*entity.ExtractJob, error) {
	var (
		id, source, kind, status, started string
		finished, errMsg, fieldsJSON      sql.NullString
		lineCount                         int
	)
	if err := s.Scan(&id, &source, &kind, &status, &started, &finished, &errMsg, &fieldsJSON, &lineCount); err != nil {
		return nil, err
	}
	job := &entity.ExtractJob{
		SourcePath: source,
		Kind:       constants.DocKind(kind),
		Status:     constants.JobStatus(status),
		LineCount:  lineCount,
	}
	var err error
	if job.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if job.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finished.Valid {
		t, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		job.FinishedAt = &t
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if fieldsJSON.Valid && fieldsJSON.String != "" {
		if err := json.Unmarshal([]byte(fieldsJSON.String), &job.Fields); err != nil {
			return nil, fmt.Errorf("decode fields: %w", err)
		}
	}
	return job, nil
}
