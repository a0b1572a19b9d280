package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKernelSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gradient.cl")
	require.NoError(t, os.WriteFile(path, []byte("__kernel void k() {}"), 0o644))

	src, err := LoadKernelSource(path)
	require.NoError(t, err)
	assert.Equal(t, "__kernel void k() {}", src.Source)
	assert.False(t, src.LastLoaded.IsZero())

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err = LoadKernelSource(path)
	assert.Error(t, err)

	_, err = LoadKernelSource(filepath.Join(dir, "missing.cl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestKernelWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gradient.cl")
	other := filepath.Join(dir, "other.cl")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := NewKernelWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	select {
	case got := <-w.Changes():
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	select {
	case got := <-w.Changes():
		assert.Equal(t, w.Path(), got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestKernelWatcherCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k.cl")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	w, err := NewKernelWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Error(t, w.Close())
}
