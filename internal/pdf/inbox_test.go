package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestListInbox(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.pdf")
	touch(t, dir, "a.PDF")
	touch(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	pdfs, err := ListInbox(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PDF"),
		filepath.Join(dir, "b.pdf"),
	}, pdfs)
}

func TestCheckSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, 2*1024*1024), 0o644))

	assert.NoError(t, CheckSize(path, 3))
	assert.Error(t, CheckSize(path, 1))
}

func TestMoveToProcessedAvoidsCollisions(t *testing.T) {
	inbox := t.TempDir()
	processed := t.TempDir()
	touch(t, processed, "inv.pdf")

	src := touch(t, inbox, "inv.pdf")
	target, err := MoveToProcessed(src, processed)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(processed, "inv_1.pdf"), target)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(target)
	assert.NoError(t, err)
}
