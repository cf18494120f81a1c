package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/repository"
)

const sheet = "Cards"

// fixed leading columns; one column per field tag follows
var leadingHeaders = []string{"Job ID", "Source", "Kind", "Status", "Started At", "Error"}

// Service produces XLSX workbooks of stored extraction jobs.
type Service struct {
	jobs   repository.ExtractJobRepository
	logger *slog.Logger
}

func NewService(jobs repository.ExtractJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportJobsXLSX returns a workbook (as bytes) with one row per job matching
// filter. Field columns use the wire names of the tags.
func (s *Service) ExportJobsXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	jobs, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	tags := constants.AllFieldTags()
	headers := append([]string(nil), leadingHeaders...)
	for _, t := range tags {
		headers = append(headers, string(t))
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, j := range jobs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		errMsg := ""
		if j.ErrorMessage != nil {
			errMsg = truncate(*j.ErrorMessage, 140)
		}
		write(1, j.ID.String())
		write(2, filepath.Base(j.SourcePath))
		write(3, string(j.Kind))
		write(4, string(j.Status))
		write(5, j.StartedAt.Format(time.RFC3339))
		write(6, errMsg)
		for k, t := range tags {
			// numbers with leading zeros must stay text
			write(len(leadingHeaders)+k+1, j.Field(t))
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "F", 14)
	_ = f.SetColWidth(sheet, "G", last, 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(jobs),
		"kind", filter.Kind,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
