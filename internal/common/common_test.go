package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"DB_URL", "WORKERS", "QUEUE_SIZE", "PROCESS_TIMEOUT", "LOG_LEVEL", "INSURER_LIST_PATH", "GRPC_ADDR"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, "file:cards.db", cfg.Database.DSN)
	assert.Equal(t, 4, cfg.Worker.Workers)
	assert.Equal(t, 256, cfg.Worker.QueueSize)
	assert.Equal(t, 30*time.Second, cfg.Worker.ProcessTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/cards")
	t.Setenv("WORKERS", "8")
	t.Setenv("PROCESS_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("QUEUE_SIZE", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "postgres://localhost/cards", cfg.Database.DSN)
	assert.Equal(t, 8, cfg.Worker.Workers)
	assert.Equal(t, 5*time.Second, cfg.Worker.ProcessTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 256, cfg.Worker.QueueSize)
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{DSN: "x"}, Worker: WorkerConfig{Workers: 0, QueueSize: 1}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{err: fmt.Errorf("x: %w", ErrInvalidInput), code: codes.InvalidArgument},
		{err: NewAppError("K", "kind", ErrUnsupportedKind), code: codes.InvalidArgument},
		{err: ErrNotFound, code: codes.NotFound},
		{err: errors.New("boom"), code: codes.Internal},
		{err: NotFoundError("gone"), code: codes.NotFound},
	}
	for _, tt := range tests {
		st, ok := status.FromError(ToStatus(tt.err))
		require.True(t, ok)
		assert.Equal(t, tt.code, st.Code(), tt.err.Error())
	}
	assert.NoError(t, ToStatus(nil))
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator().
		Field("kind", "公費", Required, KnownKind).
		Field("fields", []string{"HknjaNum", "Kigo"}, KnownFieldTags)
	assert.False(t, v.HasErrors())

	v = NewValidator().
		Field("kind", "passport", KnownKind).
		Field("fields", []string{"HknjaNum", "Nope"}, KnownFieldTags).
		Field("job_id", "not-a-uuid", UUID)
	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.ErrorIs(t, v.Error(), ErrValidation)

	st, ok := status.FromError(ValidateAndReturnError(v))
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestMaxLength(t *testing.T) {
	rule := MaxLength(4)
	assert.Nil(t, rule("source", "保険者証"))
	assert.NotNil(t, rule("source", "保険者証X"))
	long := "abcde"
	assert.NotNil(t, rule("source", &long))
	assert.Nil(t, rule("source", 12345))
}

func TestSessionContext(t *testing.T) {
	ctx := WithSessionID(context.Background(), "s-1")
	ctx = WithRequestID(ctx, "r-1")
	assert.Equal(t, "s-1", SessionIDFromContext(ctx))
	assert.Equal(t, "r-1", RequestIDFromContext(ctx))
	assert.Empty(t, SessionIDFromContext(context.Background()))
}
