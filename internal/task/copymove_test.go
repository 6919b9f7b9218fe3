package task_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/mara-voss/dualpane/internal/progress"
	"github.com/mara-voss/dualpane/internal/task"
	"github.com/stretchr/testify/require"
)

func autoConfirmHooks(t *testing.T, completed chan<- task.Result) task.Hooks {
	return task.Hooks{
		Confirm: func(proceed func(), cancel func()) { proceed() },
		ResolveConflict: func(c task.Conflict, decide func(task.ConflictDecision, bool)) {
			decide(task.DecisionOverwrite, true)
		},
		OnCompleted: func(r task.Result) { completed <- r },
	}
}

func waitResult(t *testing.T, ch <-chan task.Result) task.Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("task did not complete in time")
	}
	return task.Result{}
}

func TestCopyTaskNoConflicts(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "one.txt"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "two.txt"), []byte("2"), 0o644))

	mgr := task.NewManager()
	log := logbuf.New(100)
	prog := progress.NewManager()
	completed := make(chan task.Result, 1)

	sources := []pathfs.Path{
		local.New(filepath.Join(srcDir, "one.txt")),
		local.New(filepath.Join(srcDir, "two.txt")),
	}
	tk := task.NewCopyMoveDeleteTask(mgr, log, prog, task.VerbCopy, sources, local.New(dstDir), autoConfirmHooks(t, completed))

	require.NoError(t, mgr.Start(tk))
	r := waitResult(t, completed)

	require.Equal(t, 2, r.SuccessCount)
	require.Equal(t, 0, r.ErrorCount)
	require.Equal(t, 0, r.SkipCount)

	_, err := os.Stat(filepath.Join(dstDir, "one.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dstDir, "two.txt"))
	require.NoError(t, err)
}

func TestCopyTaskResolvesConflictByOverwrite(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "one.txt"), []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dstDir, "one.txt"), []byte("old"), 0o644))

	mgr := task.NewManager()
	log := logbuf.New(100)
	prog := progress.NewManager()
	completed := make(chan task.Result, 1)

	sources := []pathfs.Path{local.New(filepath.Join(srcDir, "one.txt"))}
	tk := task.NewCopyMoveDeleteTask(mgr, log, prog, task.VerbCopy, sources, local.New(dstDir), autoConfirmHooks(t, completed))

	require.NoError(t, mgr.Start(tk))
	r := waitResult(t, completed)

	require.Equal(t, 1, r.SuccessCount)
	got, err := os.ReadFile(filepath.Join(dstDir, "one.txt"))
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestManagerRejectsSecondTaskWhileActive(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "one.txt"), []byte("1"), 0o644))

	mgr := task.NewManager()
	log := logbuf.New(100)
	prog := progress.NewManager()
	completed := make(chan task.Result, 1)

	var once sync.Once
	blocked := make(chan struct{})
	hooks := task.Hooks{
		Confirm: func(proceed func(), cancel func()) {
			once.Do(func() { close(blocked) })
			proceed()
		},
		OnCompleted: func(r task.Result) { completed <- r },
	}

	sources := []pathfs.Path{local.New(filepath.Join(srcDir, "one.txt"))}
	tk1 := task.NewCopyMoveDeleteTask(mgr, log, prog, task.VerbCopy, sources, local.New(dstDir), hooks)
	tk2 := task.NewCopyMoveDeleteTask(mgr, log, prog, task.VerbCopy, sources, local.New(dstDir), hooks)

	require.NoError(t, mgr.Start(tk1))
	<-blocked
	require.ErrorIs(t, mgr.Start(tk2), task.ErrAlreadyActive)

	waitResult(t, completed)
}

func TestDeleteTaskRemovesFiles(t *testing.T) {
	srcDir := t.TempDir()
	target := filepath.Join(srcDir, "doomed.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	mgr := task.NewManager()
	log := logbuf.New(100)
	prog := progress.NewManager()
	completed := make(chan task.Result, 1)

	tk := task.NewCopyMoveDeleteTask(mgr, log, prog, task.VerbDelete, []pathfs.Path{local.New(target)}, nil, task.Hooks{
		OnCompleted: func(r task.Result) { completed <- r },
	})
	require.NoError(t, mgr.Start(tk))
	r := waitResult(t, completed)

	require.Equal(t, 1, r.SuccessCount)
	_, err := os.Stat(target)
	require.True(t, os.IsNotExist(err))
}

func TestCancelSkipsRemainingItems(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, name), []byte("x"), 0o644))
	}

	mgr := task.NewManager()
	log := logbuf.New(100)
	prog := progress.NewManager()
	completed := make(chan task.Result, 1)

	var tk *task.CopyMoveDeleteTask
	hooks := task.Hooks{
		Confirm: func(proceed func(), cancel func()) {
			tk.Cancel()
			proceed()
		},
		OnCompleted: func(r task.Result) { completed <- r },
	}
	sources := []pathfs.Path{
		local.New(filepath.Join(srcDir, "a.txt")),
		local.New(filepath.Join(srcDir, "b.txt")),
		local.New(filepath.Join(srcDir, "c.txt")),
	}
	tk = task.NewCopyMoveDeleteTask(mgr, log, prog, task.VerbCopy, sources, local.New(dstDir), hooks)
	require.NoError(t, mgr.Start(tk))
	r := waitResult(t, completed)

	require.Less(t, r.SuccessCount, 3)
	require.Equal(t, 3, r.TotalPlanned)
	require.Equal(t, r.TotalPlanned, r.SuccessCount+r.SkipCount+r.ErrorCount)
}
