package archive_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mara-voss/dualpane/internal/pathfs/archive"
	"github.com/stretchr/testify/require"
)

func TestWriterZipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.zip")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := archive.NewWriter(archive.FormatZip, f)
	require.NoError(t, w.AddDir("sub", time.Now()))
	require.NoError(t, w.AddFile("sub/a.txt", bytes.NewBufferString("hello"), 5, time.Now()))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	ar, err := archive.Open(path)
	require.NoError(t, err)

	entries, err := ar.IterChildren(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "sub", entries[0].DisplayName)
	require.True(t, entries[0].Path.IsDir(context.Background()))

	children, err := entries[0].Path.IterChildren(context.Background())
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.Equal(t, "a.txt", children[0].DisplayName)

	rc, err := children[0].Path.OpenRead(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func TestWriterTarGzRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tar.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := archive.NewWriter(archive.FormatTarGz, f)
	require.NoError(t, w.AddFile("b.txt", bytes.NewBufferString("payload"), 7, time.Now()))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	ar, err := archive.Open(path)
	require.NoError(t, err)
	entries, err := ar.IterChildren(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "b.txt", entries[0].DisplayName)
}

func TestFormatForName(t *testing.T) {
	_, err := archive.FormatForName("archive.zip")
	require.NoError(t, err)
	_, err = archive.FormatForName("archive.tar.gz")
	require.NoError(t, err)
	_, err = archive.FormatForName("archive.tgz")
	require.NoError(t, err)
	_, err = archive.FormatForName("archive.rar")
	require.Error(t, err)
}
