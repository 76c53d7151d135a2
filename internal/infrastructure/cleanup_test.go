package infrastructure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupPartials(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p1.mp4.part", "x")
	writeFile(t, dir, "p2.mp4.ytdl", "x")
	writeFile(t, dir, filepath.Join("pl1", "01-a.f301.mp4.part-Frag3"), "x")
	kept := writeFile(t, dir, "p3.mp4", "complete")
	writeFile(t, dir, "notes.txt", "unrelated")

	result, err := CleanupPartials(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Removed)
	assert.Equal(t, 1, result.Remaining)

	_, err = os.Stat(kept)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "p1.mp4.part"))
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupPartials_MissingDir(t *testing.T) {
	_, err := CleanupPartials(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestCleanupPartials_Empty(t *testing.T) {
	result, err := CleanupPartials(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.Removed)
	assert.Zero(t, result.Remaining)
}
