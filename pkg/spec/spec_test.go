package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSpec = `openapi: 3.0.3
info:
  title: Minimal
  version: "1.0"
paths: {}
`

func TestLoadData(t *testing.T) {
	doc, err := LoadData([]byte(minimalSpec), "inline")
	require.NoError(t, err)
	assert.Equal(t, "Minimal", doc.Title())
	assert.Equal(t, "1.0", doc.Version())
	assert.Equal(t, "inline", doc.Source)
}

func TestLoadData_InvalidSpec(t *testing.T) {
	// Parses as YAML but fails OpenAPI validation: info is required.
	_, err := LoadData([]byte("openapi: 3.0.3\npaths: {}\n"), "inline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid OpenAPI spec")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalSpec), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(minimalSpec), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "nested", "other.json"),
		[]byte(`{"openapi":"3.0.3","info":{"title":"Other","version":"2.0"},"paths":{}}`),
		0o644,
	))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("openapi: 3.0.3\npaths: {}\n"), 0o644))
	// Files outside the patterns are not picked up.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a spec"), 0o644))

	docs, err := LoadDir(dir, nil)
	require.Error(t, err, "broken spec should surface in the joined error")
	require.Len(t, docs, 2)
	assert.Equal(t, "Minimal", docs[0].Title())
	assert.Equal(t, "Other", docs[1].Title())
}

func TestLoadDir_CustomPattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.yaml"), []byte(minimalSpec), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte(minimalSpec), 0o644))

	docs, err := LoadDir(dir, []string{"*.yaml"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Source, "api.yaml")
}

func TestLoadDir_Empty(t *testing.T) {
	docs, err := LoadDir(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocument_NilSafety(t *testing.T) {
	var doc *Document
	assert.Equal(t, "", doc.Title())
	assert.Equal(t, "", doc.Version())
	assert.Nil(t, doc.Endpoints())
}
