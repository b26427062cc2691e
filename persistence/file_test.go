package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "graph.grp")
	snap := makeSnapshot()

	require.NoError(t, WriteFile(filename, snap))

	t.Run("ReadFile", func(t *testing.T) {
		got, err := ReadFile(filename)
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
	})

	t.Run("MapFile", func(t *testing.T) {
		got, closer, err := MapFile(filename)
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
		require.NoError(t, closer.Close())
	})

	t.Run("NoTempFilesLeftBehind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "graph.grp", entries[0].Name())
	})
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "graph.grp")

	first := makeSnapshot()
	require.NoError(t, WriteFile(filename, first))

	second := bigSnapshot()
	require.NoError(t, WriteFile(filename, second))

	got, err := ReadFile(filename)
	require.NoError(t, err)
	assertSnapshotEqual(t, second, got)
}

func TestWriteFile_FailureKeepsTarget(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "graph.grp")

	good := makeSnapshot()
	require.NoError(t, WriteFile(filename, good))

	bad := makeSnapshot()
	bad.Weights = bad.Weights[:1]
	require.ErrorIs(t, WriteFile(filename, bad), ErrMalformedSnapshot)

	// The failed write must neither clobber the file nor leak its temp file.
	got, err := ReadFile(filename)
	require.NoError(t, err)
	assertSnapshotEqual(t, good, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestMapFile_CompressedRejected(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "graph.grp")

	require.NoError(t, WriteFile(filename, bigSnapshot(), WithCompression(CompressionLZ4)))

	_, _, err := MapFile(filename)
	require.ErrorIs(t, err, ErrCompressedMapping)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.grp"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
