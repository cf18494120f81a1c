package server

import (
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/analyzer"
	"github.com/joseph-ayodele/hoken-card-reader/internal/pipeline"
)

// fixed score reported for every field; extraction has no per-field confidence
const fieldConfidence = 1.0

// BuildResponse wraps each requested field as {"text": value, "confidence": 1.0}.
// A requested field that was not found has a null text. With no tags, every
// found field is returned.
func BuildResponse(out pipeline.Outcome, tags []constants.FieldTag) *structpb.Struct {
	if len(tags) == 0 {
		tags = foundTags(out.Fields)
	}
	fields := make(map[string]*structpb.Value, len(tags))
	for _, tag := range tags {
		text := structpb.NewNullValue()
		if v, ok := out.Fields.Get(tag); ok {
			text = structpb.NewStringValue(v)
		}
		fields[string(tag)] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"text":       text,
				"confidence": structpb.NewNumberValue(fieldConfidence),
			},
		})
	}

	resp := &structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":   structpb.NewStringValue(string(out.Kind)),
		"fields": structpb.NewStructValue(&structpb.Struct{Fields: fields}),
	}}
	if out.JobID != uuid.Nil {
		resp.Fields["job_id"] = structpb.NewStringValue(out.JobID.String())
	}
	return resp
}

func foundTags(res analyzer.Result) []constants.FieldTag {
	var out []constants.FieldTag
	for _, tag := range constants.AllFieldTags() {
		if res.Has(tag) {
			out = append(out, tag)
		}
	}
	return out
}
