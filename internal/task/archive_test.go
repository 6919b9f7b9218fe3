package task_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/pathfs/archive"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/mara-voss/dualpane/internal/progress"
	"github.com/mara-voss/dualpane/internal/task"
	"github.com/stretchr/testify/require"
)

func archiveHooks(t *testing.T, completed chan<- task.Result) task.Hooks {
	return task.Hooks{
		Confirm: func(proceed func(), cancel func()) { proceed() },
		ResolveConflict: func(c task.Conflict, decide func(task.ConflictDecision, bool)) {
			decide(task.DecisionOverwrite, true)
		},
		OnCompleted: func(r task.Result) { completed <- r },
	}
}

func TestCreateTaskWritesRealZip(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "one.txt"), []byte("one"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(srcDir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "sub", "two.txt"), []byte("two"), 0o644))

	mgr := task.NewManager()
	log := logbuf.New(100)
	prog := progress.NewManager()
	completed := make(chan task.Result, 1)

	sources := []pathfs.Path{
		local.New(filepath.Join(srcDir, "one.txt")),
		local.New(filepath.Join(srcDir, "sub")),
	}
	destArchive := local.New(filepath.Join(destDir, "out.zip"))
	tk := task.NewCreateTask(mgr, log, prog, sources, destArchive, archiveHooks(t, completed))

	require.NoError(t, mgr.Start(tk))
	r := waitResult(t, completed)
	require.Equal(t, 0, r.ErrorCount)

	fi, err := os.Stat(filepath.Join(destDir, "out.zip"))
	require.NoError(t, err)
	require.False(t, fi.IsDir())

	ar, err := archive.Open(filepath.Join(destDir, "out.zip"))
	require.NoError(t, err)

	entries, err := ar.IterChildren(context.Background())
	require.NoError(t, err)
	names := map[string]pathfs.Entry{}
	for _, e := range entries {
		names[e.DisplayName] = e
	}
	require.Contains(t, names, "one.txt")
	require.Contains(t, names, "sub")
	require.True(t, names["sub"].Path.IsDir(context.Background()))

	rc, err := names["one.txt"].Path.OpenRead(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	buf := make([]byte, 3)
	_, err = rc.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "one", string(buf))

	subEntries, err := names["sub"].Path.IterChildren(context.Background())
	require.NoError(t, err)
	require.Len(t, subEntries, 1)
	require.Equal(t, "two.txt", subEntries[0].DisplayName)
}

func TestCreateTaskWritesRealTarGz(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("payload"), 0o644))

	mgr := task.NewManager()
	log := logbuf.New(100)
	prog := progress.NewManager()
	completed := make(chan task.Result, 1)

	sources := []pathfs.Path{local.New(filepath.Join(srcDir, "a.txt"))}
	destArchive := local.New(filepath.Join(destDir, "out.tar.gz"))
	tk := task.NewCreateTask(mgr, log, prog, sources, destArchive, archiveHooks(t, completed))

	require.NoError(t, mgr.Start(tk))
	r := waitResult(t, completed)
	require.Equal(t, 0, r.ErrorCount)

	ar, err := archive.Open(filepath.Join(destDir, "out.tar.gz"))
	require.NoError(t, err)
	entries, err := ar.IterChildren(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a.txt", entries[0].DisplayName)
}

func TestExtractTaskUnpacksZipEntries(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "one.txt"), []byte("one"), 0o644))

	packMgr := task.NewManager()
	log := logbuf.New(100)
	prog := progress.NewManager()
	packed := make(chan task.Result, 1)
	archivePath := filepath.Join(destDir, "in.zip")
	packTask := task.NewCreateTask(packMgr, log, prog,
		[]pathfs.Path{local.New(filepath.Join(srcDir, "one.txt"))},
		local.New(archivePath), archiveHooks(t, packed))
	require.NoError(t, packMgr.Start(packTask))
	waitResult(t, packed)

	ar, err := archive.Open(archivePath)
	require.NoError(t, err)

	extractTo := t.TempDir()
	extractMgr := task.NewManager()
	extracted := make(chan task.Result, 1)
	extractTask := task.NewExtractTask(extractMgr, log, prog, ar, local.New(extractTo), archiveHooks(t, extracted))
	require.NoError(t, extractMgr.Start(extractTask))
	r := waitResult(t, extracted)
	require.Equal(t, 0, r.ErrorCount)

	got, err := os.ReadFile(filepath.Join(extractTo, "one.txt"))
	require.NoError(t, err)
	require.Equal(t, "one", string(got))
}
