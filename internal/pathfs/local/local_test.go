package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/stretchr/testify/require"
)

func TestIterChildrenAndStat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	p := local.New(dir)
	entries, err := p.IterChildren(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := map[string]pathfs.Entry{}
	for _, e := range entries {
		names[e.DisplayName] = e
	}
	require.Contains(t, names, "a.txt")
	require.Contains(t, names, "sub")
	require.Equal(t, int64(5), names["a.txt"].Info.Size)
	require.True(t, names["sub"].Path.IsDir(context.Background()))
}

func TestCopyToSameScheme(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "f.txt"), []byte("payload"), 0o644))

	srcPath := local.New(filepath.Join(src, "f.txt"))
	dstPath := local.New(filepath.Join(dst, "f.txt"))

	require.NoError(t, srcPath.CopyTo(context.Background(), dstPath, false))
	got, err := os.ReadFile(filepath.Join(dst, "f.txt"))
	require.NoError(t, err)
	require.Equal(t, "payload", string(got))
}

func TestCopyToRefusesOverwriteWithoutFlag(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "f.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "f.txt"), []byte("b"), 0o644))

	srcPath := local.New(filepath.Join(src, "f.txt"))
	dstPath := local.New(filepath.Join(dst, "f.txt"))

	err := srcPath.CopyTo(context.Background(), dstPath, false)
	require.ErrorIs(t, err, pathfs.ErrUnsupported)
}

func TestCopyToRemovesPartialFileOnCancel(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	payload := make([]byte, 3*pathfs.ChunkSize)
	require.NoError(t, os.WriteFile(filepath.Join(src, "big.bin"), payload, 0o644))

	srcPath := local.New(filepath.Join(src, "big.bin"))
	dstPath := local.New(filepath.Join(dst, "big.bin"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := srcPath.CopyTo(ctx, dstPath, false)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dst, "big.bin"))
	require.True(t, os.IsNotExist(statErr))
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	p := local.New(filepath.Join(t.TempDir(), "missing"))
	_, err := p.Stat(context.Background())
	require.ErrorIs(t, err, pathfs.ErrNotFound)
}
