package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"lines":[]}`), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.json"))
	writeFile(t, filepath.Join(root, "a.JSON"))
	writeFile(t, filepath.Join(root, "notes.txt"))
	writeFile(t, filepath.Join(root, "nested", "c.json"))
	writeFile(t, filepath.Join(root, ".cache", "d.json"))
	writeFile(t, filepath.Join(root, ".e.json"))

	paths, stats, err := ScanDirectory(root, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.JSON"),
		filepath.Join(root, "b.json"),
		filepath.Join(root, "nested", "c.json"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(4), stats.Scanned)

	paths, _, err = ScanDirectory(root, false, nil)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
}

func TestScanDirectoryErrors(t *testing.T) {
	_, _, err := ScanDirectory("  ", true, nil)
	assert.Error(t, err)

	_, _, err = ScanDirectory(filepath.Join(t.TempDir(), "missing"), true, nil)
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/tmp/.git"))
	assert.False(t, IsHidden("/tmp/card.json"))
	assert.False(t, IsHidden("."))
}

func TestStartWatcherInitialScanAndCreate(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.json")
	writeFile(t, existing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, existing, p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan event not received")
	}

	created := filepath.Join(root, "new.json")
	writeFile(t, created)
	writeFile(t, filepath.Join(root, "ignored.txt"))

	select {
	case p := <-events:
		assert.Equal(t, created, p)
	case <-time.After(3 * time.Second):
		t.Fatal("create event not received")
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
