package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/pipeline"
)

// extractOutput is one line of JSON written per document.
type extractOutput struct {
	Source    string                        `json:"source"`
	JobID     string                        `json:"job_id,omitempty"`
	Kind      constants.DocKind             `json:"kind"`
	LineCount int                           `json:"line_count"`
	Fields    map[constants.FieldTag]string `json:"fields,omitempty"`
	Error     string                        `json:"error,omitempty"`
}

func newExtractCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract fields from OCR documents and print them as JSON lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)

			var errs []error
			for _, path := range args {
				out, err := a.proc.ProcessFile(cmd.Context(), path)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
				}
				if werr := enc.Encode(toOutput(out, err)); werr != nil {
					return werr
				}
			}
			return errors.Join(errs...)
		},
	}
}

func toOutput(out pipeline.Outcome, err error) extractOutput {
	o := extractOutput{
		Source:    out.Source,
		Kind:      out.Kind,
		LineCount: out.LineCount,
		Fields:    out.Fields,
	}
	if out.JobID != uuid.Nil {
		o.JobID = out.JobID.String()
	}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}
