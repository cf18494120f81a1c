package server

import (
	"context"
	"log/slog"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
	"github.com/joseph-ayodele/hoken-card-reader/internal/pipeline"
)

const (
	defaultSource   = "grpc"
	maxSourceLength = 512
)

// DocumentProcessor is the part of pipeline.Processor the server needs.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, source string, doc ocr.Document) (pipeline.Outcome, error)
}

// Extractor serves Extract requests. The request carries the OCR document
// ("kind", "lines") plus optional "fields" (tags to return) and "source".
type Extractor struct {
	proc         DocumentProcessor
	fallbackKind constants.DocKind
	logger       *slog.Logger
}

func NewExtractor(proc DocumentProcessor, fallbackKind constants.DocKind, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if fallbackKind == "" {
		fallbackKind = constants.KindMain
	}
	return &Extractor{proc: proc, fallbackKind: fallbackKind, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, common.InvalidArgumentError("request is required")
	}
	fields := req.GetFields()

	tags, err := requestedTags(fields["fields"])
	if err != nil {
		return nil, err
	}
	v := common.NewValidator()
	if k, ok := fields["kind"]; ok {
		v.Field("kind", k.GetStringValue(), common.KnownKind)
	}
	v.Field("fields", tags, common.KnownFieldTags)
	v.Field("source", fields["source"].GetStringValue(), common.MaxLength(maxSourceLength))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	data, err := protojson.Marshal(req)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("encode request: %v", err)
	}
	doc, err := ocr.DecodeDocument(data, e.fallbackKind)
	if err != nil {
		e.logger.Warn("extract request rejected", "err", err)
		return nil, common.ToStatus(err)
	}

	source := fields["source"].GetStringValue()
	if source == "" {
		source = defaultSource
	}
	out, err := e.proc.ProcessDocument(ctx, source, doc)
	if err != nil {
		e.logger.Error("extract failed", "source", source, "kind", doc.Kind, "err", err)
		return nil, common.ToStatus(err)
	}

	wanted := make([]constants.FieldTag, 0, len(tags))
	for _, t := range tags {
		tag, _ := constants.ParseFieldTag(t)
		wanted = append(wanted, tag)
	}
	return BuildResponse(out, wanted), nil
}

func requestedTags(v *structpb.Value) ([]string, error) {
	if v == nil {
		return []string{}, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, common.InvalidArgumentError("fields must be a list of strings")
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, common.InvalidArgumentError("fields must be a list of strings")
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}
