package server

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
	"github.com/joseph-ayodele/hoken-card-reader/internal/extract/analyzer"
	"github.com/joseph-ayodele/hoken-card-reader/internal/ocr"
	"github.com/joseph-ayodele/hoken-card-reader/internal/pipeline"
)

const extractRequest = `{
  "kind": "main",
  "source": "scanner-1",
  "fields": ["HknjaNum", "Kigo", "Branch"],
  "lines": [
    [["保険者番号", 0.98], "保険者番号"],
    {"text": "01010016"},
    {"text": "記号 1234 番号 5678"},
    {"text": "生年月日 昭和50年1月2日"}
  ]
}`

func mustStruct(t *testing.T, js string) *structpb.Struct {
	t.Helper()
	s := &structpb.Struct{}
	require.NoError(t, protojson.Unmarshal([]byte(js), s))
	return s
}

func fieldText(t *testing.T, resp *structpb.Struct, tag string) *structpb.Value {
	t.Helper()
	f, ok := resp.GetFields()["fields"].GetStructValue().GetFields()[tag]
	require.True(t, ok, "field %s missing", tag)
	assert.Equal(t, 1.0, f.GetStructValue().GetFields()["confidence"].GetNumberValue())
	return f.GetStructValue().GetFields()["text"]
}

func newExtractor() *Extractor {
	return NewExtractor(pipeline.NewProcessor(nil, nil, nil, ""), "", nil)
}

func TestExtract(t *testing.T) {
	resp, err := newExtractor().Extract(context.Background(), mustStruct(t, extractRequest))
	require.NoError(t, err)

	assert.Equal(t, string(constants.KindMain), resp.GetFields()["kind"].GetStringValue())
	assert.Equal(t, "01010016", fieldText(t, resp, "HknjaNum").GetStringValue())
	assert.Equal(t, "1234", fieldText(t, resp, "Kigo").GetStringValue())

	_, isNull := fieldText(t, resp, "Branch").GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)

	assert.NotContains(t, resp.GetFields()["fields"].GetStructValue().GetFields(), "Birthday")
	assert.NotContains(t, resp.GetFields(), "job_id")
}

func TestExtractAllFoundFields(t *testing.T) {
	req := mustStruct(t, extractRequest)
	delete(req.Fields, "fields")

	resp, err := newExtractor().Extract(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "1975-01-02", fieldText(t, resp, "Birthday").GetStringValue())
	assert.NotContains(t, resp.GetFields()["fields"].GetStructValue().GetFields(), "Branch")
}

func TestExtractInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		req  string
	}{
		{"unknown kind", `{"kind": "passport", "lines": []}`},
		{"unknown tag", `{"fields": ["Nope"], "lines": []}`},
		{"fields not a list", `{"fields": "HknjaNum", "lines": []}`},
		{"fields not strings", `{"fields": [1], "lines": []}`},
		{"missing lines", `{"kind": "main"}`},
		{"source too long", `{"source": "` + strings.Repeat("x", maxSourceLength+1) + `", "lines": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newExtractor().Extract(context.Background(), mustStruct(t, tt.req))
			require.Error(t, err)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}

	_, err := newExtractor().Extract(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

type failingProcessor struct{}

func (failingProcessor) ProcessDocument(context.Context, string, ocr.Document) (pipeline.Outcome, error) {
	return pipeline.Outcome{}, common.NewAppError("DB", "store failed", errors.Join(common.ErrDatabase, errors.New("disk full")))
}

func TestExtractProcessorError(t *testing.T) {
	e := NewExtractor(failingProcessor{}, constants.KindPublic, nil)
	_, err := e.Extract(context.Background(), mustStruct(t, `{"lines": [{"text": "x"}]}`))
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestBuildResponse(t *testing.T) {
	out := pipeline.Outcome{
		Kind:   constants.KindPublic,
		Fields: analyzer.Result{constants.SubscriberNumber: "1234567", constants.CopayClass: ""},
	}
	resp := BuildResponse(out, nil)
	got := resp.GetFields()["fields"].GetStructValue().GetFields()
	assert.Len(t, got, 1)
	assert.Equal(t, "1234567", got["Num"].GetStructValue().GetFields()["text"].GetStringValue())
}

func TestExtractOverGRPC(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCardExtractorServer(srv, newExtractor())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	resp, err := Extract(context.Background(), conn, mustStruct(t, extractRequest))
	require.NoError(t, err)
	assert.Equal(t, "01010016", fieldText(t, resp, "HknjaNum").GetStringValue())

	_, err = Extract(context.Background(), conn, mustStruct(t, `{"kind": "passport", "lines": []}`))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLoggingInterceptorSetsRequestID(t *testing.T) {
	icpt := LoggingInterceptor(nil)
	info := &grpc.UnaryServerInfo{FullMethod: ExtractMethod}

	var seen string
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		seen = common.RequestIDFromContext(ctx)
		return "ok", nil
	}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "req-42"))
	resp, err := icpt(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, "req-42", seen)

	_, _ = icpt(context.Background(), nil, info, handler)
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "req-42", seen)
}
