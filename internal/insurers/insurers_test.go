package insurers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/hoken-card-reader/internal/common"
)

func TestDefault(t *testing.T) {
	list := Default()
	assert.Contains(t, list.Standard, "01010016")
	assert.NotEmpty(t, list.Tolerant)

	got, ok := list.Match("保険者番号 0113001", nil)
	require.True(t, ok)
	assert.Equal(t, "01130012", got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "list.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("standard:\n  - \"138057\"\n  - \"138057\"\n"), 0o600))
	list, err := Load(yamlPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"138057"}, list.Standard)
	assert.Equal(t, []string{"138057"}, list.Tolerant, "tolerant falls back to standard")

	jsonPath := filepath.Join(dir, "list.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"standard":["01010016"],"tolerant":["01130012"]}`), 0o600))
	list, err = Load(jsonPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"01130012"}, list.Tolerant)

	list, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Standard, list.Standard)
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("standard:\n  - \"12ab\"\n"), 0o600))
	_, err := Load(bad, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	extra := filepath.Join(dir, "extra.yaml")
	require.NoError(t, os.WriteFile(extra, []byte("standard: []\nother: 1\n"), 0o600))
	_, err = Load(extra, nil)
	assert.True(t, errors.Is(err, common.ErrValidation))

	txt := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(txt, []byte("standard: []"), 0o600))
	_, err = Load(txt, nil)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}
