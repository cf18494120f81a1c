package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	return db
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: Postgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.Rebind("a = ? AND b = ?"))
	lite := &DB{Dialect: SQLite}
	assert.Equal(t, "a = ?", lite.Rebind("a = ?"))
	assert.True(t, isPostgres("postgres://u@h/db"))
	assert.False(t, isPostgres("file:cards.db"))
}

func TestExtractJobLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.HealthCheck(ctx, time.Second, common.NewLogger(0)))
	require.NoError(t, db.Migrate(ctx), "migrate is repeatable")

	repo := NewExtractJobRepository(db, nil)

	ok, err := repo.Start(ctx, "/in/a.json", constants.KindMain, constants.JobStatusRunning)
	require.NoError(t, err)
	fields := map[constants.FieldTag]string{
		constants.InsurerNumber: "01010016",
		constants.SymbolCode:    constants.SymbolNone,
	}
	require.NoError(t, repo.FinishSuccess(ctx, ok.ID, fields, 7))

	failed, err := repo.Start(ctx, "/in/b.json", constants.KindPublic, constants.JobStatusRunning)
	require.NoError(t, err)
	require.NoError(t, repo.FinishFailure(ctx, failed.ID, "bad document"))

	got, err := repo.GetByID(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusOK, got.Status)
	assert.Equal(t, fields, got.Fields)
	assert.Equal(t, 7, got.LineCount)
	assert.Equal(t, "/in/a.json", got.SourcePath)
	require.NotNil(t, got.FinishedAt)
	assert.Nil(t, got.ErrorMessage)
	assert.Equal(t, "01010016", got.Field(constants.InsurerNumber))

	got, err = repo.GetByID(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "bad document", *got.ErrorMessage)

	all, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyOK, err := repo.List(ctx, ListFilter{Status: constants.JobStatusOK})
	require.NoError(t, err)
	require.Len(t, onlyOK, 1)
	assert.Equal(t, ok.ID, onlyOK[0].ID)

	public, err := repo.List(ctx, ListFilter{Kind: constants.KindPublic, Limit: 5})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, failed.ID, public[0].ID)
}

func TestExtractJobNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractJobRepository(openTestDB(t), nil)

	_, err := repo.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = repo.FinishFailure(ctx, uuid.New(), "x")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.HealthCheck(ctx, time.Second, nil))

	db.Close(nil)
	assert.Error(t, db.HealthCheck(ctx, time.Second, nil))
}
