package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/hoken-card-reader/constants"
)

const card = `{"kind": "主保険", "lines": [{"text": "保険者番号"}, {"text": "01010016"}, {"text": "記号 1234 番号 5678"}]}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, cleanup := newRootCmd()
	t.Cleanup(cleanup)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "card.json")
	require.NoError(t, os.WriteFile(good, []byte(card), 0o600))

	out, err := run(t, "--inmem", "extract", good)
	require.NoError(t, err)

	var got extractOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, good, got.Source)
	assert.Equal(t, constants.KindMain, got.Kind)
	assert.Equal(t, "01010016", got.Fields[constants.InsurerNumber])
	assert.NotEmpty(t, got.JobID)
	assert.Empty(t, got.Error)
}

func TestExtractCommandReportsFailures(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"lines": 3}`), 0o600))

	out, err := run(t, "--inmem", "extract", bad)
	require.Error(t, err)

	var got extractOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Error)
}

func TestUnknownFallbackKind(t *testing.T) {
	_, err := run(t, "--inmem", "--kind", "passport", "health")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(in, 0o755))
	for _, name := range []string{"a.json", "b.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte(card), 0o600))
	}
	xlsx := filepath.Join(dir, "out.xlsx")

	_, err := run(t, "--inmem", "batch", in, "--out", xlsx, "--workers", "2")
	require.NoError(t, err)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Cards")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestHealthCommand(t *testing.T) {
	out, err := run(t, "--inmem", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "DB health: OK (sqlite, 0 jobs)")
}

func TestShowCommand(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "cards.db")
	path := filepath.Join(dir, "card.json")
	require.NoError(t, os.WriteFile(path, []byte(card), 0o600))

	out, err := run(t, "--db", dsn, "extract", path)
	require.NoError(t, err)
	var extracted extractOutput
	require.NoError(t, json.Unmarshal([]byte(out), &extracted))
	require.NotEmpty(t, extracted.JobID)

	out, err = run(t, "--db", dsn, "show", extracted.JobID)
	require.NoError(t, err)
	var job struct {
		ID     string                        `json:"id"`
		Status constants.JobStatus           `json:"status"`
		Fields map[constants.FieldTag]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &job))
	assert.Equal(t, extracted.JobID, job.ID)
	assert.Equal(t, constants.JobStatusOK, job.Status)
	assert.Equal(t, "01010016", job.Fields[constants.InsurerNumber])

	_, err = run(t, "--db", dsn, "show", "not-a-uuid")
	assert.Error(t, err)
}
