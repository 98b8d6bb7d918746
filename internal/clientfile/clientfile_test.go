package clientfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, "client123"))

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "client123", got)
}

func TestRead_Missing(t *testing.T) {
	got, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte("  acme \n\n"), 0644)

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "acme", got)
}

func TestFind_ParentDir(t *testing.T) {
	parent := t.TempDir()
	child := filepath.Join(parent, "reports", "2024")
	require.NoError(t, os.MkdirAll(child, 0755))
	require.NoError(t, Write(parent, "acme"))

	id, foundDir, err := Find(child)
	require.NoError(t, err)
	assert.Equal(t, "acme", id)
	assert.Equal(t, parent, foundDir)
}

func TestFind_NotFound(t *testing.T) {
	id, foundDir, err := Find(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, foundDir)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	removed, err := Remove(dir)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, Write(dir, "acme"))
	removed, err = Remove(dir)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, filepath.Join(dir, FileName))
}
