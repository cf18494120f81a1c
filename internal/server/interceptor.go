package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
)

const requestIDHeader = "x-request-id"

// LoggingInterceptor tags each call with a request ID (taken from the
// x-request-id header when present) and logs its outcome.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDHeader); len(v) > 0 {
				requestID = v[0]
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, requestID)

		start := time.Now()
		resp, err := handler(ctx, req)
		log := logger.With("request_id", common.RequestIDFromContext(ctx), "method", info.FullMethod, "duration_ms", time.Since(start).Milliseconds())
		if err != nil {
			log.Warn("rpc failed", "code", status.Code(err).String(), "err", err)
		} else {
			log.Info("rpc ok")
		}
		return resp, err
	}
}
