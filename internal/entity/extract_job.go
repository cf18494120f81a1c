package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
)

// ExtractJob is one extraction run over one OCR document.
type ExtractJob struct {
	ID           uuid.UUID                     `json:"id"`
	SourcePath   string                        `json:"source_path"`
	Kind         constants.DocKind             `json:"kind"`
	Status       constants.JobStatus           `json:"status"`
	StartedAt    time.Time                     `json:"started_at"`
	FinishedAt   *time.Time                    `json:"finished_at,omitempty"`
	ErrorMessage *string                       `json:"error_message,omitempty"`
	Fields       map[constants.FieldTag]string `json:"fields,omitempty"`
	LineCount    int                           `json:"line_count"`
}

// Field returns the extracted value for tag, or "" when absent.
func (j *ExtractJob) Field(tag constants.FieldTag) string {
	if j == nil || j.Fields == nil {
		return ""
	}
	return j.Fields[tag]
}
