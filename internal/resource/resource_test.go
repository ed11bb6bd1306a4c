package resource

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestFMU(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.fmu")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("modelDescription.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<fmiModelDescription/>"))
	require.NoError(t, err)

	w, err = zw.Create("binaries/linux64/test.so")
	require.NoError(t, err)
	_, err = w.Write([]byte("not-really-elf"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return path
}

func TestOpenExtractsArchive(t *testing.T) {
	path := writeTestFMU(t)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Release()

	require.FileExists(t, filepath.Join(r.Directory(), "modelDescription.xml"))
	require.FileExists(t, filepath.Join(r.Directory(), "binaries/linux64/test.so"))
}

func TestOpenMissingArchive(t *testing.T) {
	_, err := Open("/nonexistent/path.fmu")
	require.Error(t, err)
}

// TestDirectoryExistsIffHolderAlive covers testable property 4 from spec.md §8.
func TestDirectoryExistsIffHolderAlive(t *testing.T) {
	path := writeTestFMU(t)

	r, err := Open(path)
	require.NoError(t, err)
	dir := r.Directory()

	r2 := r.Acquire()
	require.True(t, r.Alive())

	require.NoError(t, r.Release())
	require.DirExists(t, dir)
	require.True(t, r2.Alive())

	require.NoError(t, r2.Release())
	require.NoDirExists(t, dir)
	require.False(t, r2.Alive())
}

func TestOnReleaseFiresAfterLastRelease(t *testing.T) {
	path := writeTestFMU(t)

	r, err := Open(path)
	require.NoError(t, err)
	r2 := r.Acquire()

	fired := false
	r.OnRelease(func() { fired = true })

	require.NoError(t, r.Release())
	require.False(t, fired, "must not fire until the last reference is released")

	require.NoError(t, r2.Release())
	require.True(t, fired)
}
