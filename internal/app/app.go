// Package app is the top-level runner (spec.md §4.2 "Core loop and
// threading model"): it owns the renderer, the shared grid, the UI layer
// stack, and the single task manager, and it is the one place global
// shortcuts are intercepted before an event reaches the layer stack. This
// plays the role the teacher's cmd/root.go + internal/app.Model pairing
// played for its Bubble Tea runtime, generalized to the callback-driven
// core loop SPEC_FULL.md's ambient stack calls for (see DESIGN.md).
package app

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mara-voss/dualpane/internal/config"
	"github.com/mara-voss/dualpane/internal/dialog"
	"github.com/mara-voss/dualpane/internal/event"
	"github.com/mara-voss/dualpane/internal/filetype"
	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/mara-voss/dualpane/internal/mainscreen"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/pathfs/archive"
	"github.com/mara-voss/dualpane/internal/progress"
	"github.com/mara-voss/dualpane/internal/render"
	"github.com/mara-voss/dualpane/internal/task"
	"github.com/mara-voss/dualpane/internal/ui/styles"
	"github.com/mara-voss/dualpane/internal/uilayer"
	"github.com/mara-voss/dualpane/internal/viewer"
)

// pollTimeoutMs bounds how long RunEventLoopIteration may block before
// the runner gets a chance to notice Stop() was called (spec.md §5 "the
// main thread suspends only inside run_event_loop_iteration").
const pollTimeoutMs = 100

// App wires a Renderer, the UI layer stack, and the task manager into one
// event-driven runner.
type App struct {
	cfg      config.Config
	renderer render.Renderer
	grid     *render.Grid

	screen *mainscreen.Screen
	stack  *uilayer.Stack

	log   *logbuf.Buffer
	prog  *progress.Manager
	tasks *task.Manager

	desktop bool
	quit    bool
}

// New builds a runner with both panes rooted at leftRoot/rightRoot.
// renderer must already be constructed but not yet Initialize'd.
func New(cfg config.Config, renderer render.Renderer, leftRoot, rightRoot pathfs.Path, desktop bool) *App {
	log := logbuf.New(1000)
	if cfg.LogHandlers.Stdout {
		log.AddHandler(logbuf.NewStdHandler(false))
	}
	if cfg.LogHandlers.BroadcastEnabled && cfg.LogHandlers.BroadcastAddr != "" {
		if h, err := logbuf.NewBroadcastHandler(cfg.LogHandlers.BroadcastAddr); err == nil {
			log.AddHandler(h)
		}
	}

	prog := progress.NewManager()
	screen := mainscreen.NewScreen(context.Background(), leftRoot, rightRoot, cfg, log, prog)

	a := &App{
		cfg:      cfg,
		renderer: renderer,
		log:      log,
		prog:     prog,
		tasks:    task.NewManager(),
		screen:   screen,
		desktop:  desktop,
	}
	screen.OnOpenFile = a.openFile
	a.stack = uilayer.NewStack(screen)
	return a
}

// Run initializes the renderer, registers the color palette, and drives
// the event loop until a global quit is confirmed (spec.md §4.2, §5).
func (a *App) Run() error {
	if err := a.renderer.Initialize(0, 0, "dualpane"); err != nil {
		return fmt.Errorf("initialize renderer: %w", err)
	}
	defer a.renderer.Shutdown()

	styles.Register(a.renderer)

	dims := a.renderer.Dimensions()
	a.grid = render.NewGrid(dims.Rows, dims.Cols)

	if err := a.renderer.SetEventCallback(a.handleEvent); err != nil {
		return fmt.Errorf("set event callback: %w", err)
	}

	a.redraw(true)
	for !a.quit {
		if err := a.renderer.RunEventLoopIteration(pollTimeoutMs); err != nil {
			return fmt.Errorf("event loop: %w", err)
		}
		a.redraw(false)
	}
	return nil
}

// region returns the full-screen drawing region at the grid's current size.
func (a *App) region() uilayer.Region {
	return uilayer.Region{Rows: a.grid.Rows, Cols: a.grid.Cols}
}

// redraw asks the stack to render into the shared grid (a no-op when
// nothing is dirty, per spec.md §4.3 redraw gating), then blits any
// dirty cells to the backend. full forces every cell to be considered
// changed, used once at startup and after a RESIZE.
func (a *App) redraw(full bool) {
	if full {
		a.screen.MarkDirty()
	}
	a.stack.Render(a.grid, a.region())

	dirty := false
	for row := 0; row < a.grid.Rows; row++ {
		for col := 0; col < a.grid.Cols; col++ {
			cell, ok := a.grid.At(row, col)
			if !ok || !cell.Dirty {
				continue
			}
			a.renderer.SetCell(row, col, cell.Ch, cell.Pair, cell.Attrs)
			dirty = true
		}
	}
	if dirty || full {
		a.renderer.Refresh()
		a.grid.ClearDirty()
	}
}

// handleEvent is the sole Callback registered with the renderer (spec.md
// §4.2 "the renderer's event callback is the only entry point into core
// logic"). Global shortcuts are checked first; system events are handled
// next; everything else is routed through the operation shortcuts this
// layer owns (copy/move/delete/search/jump/diff/rename, which need both
// panes and the task manager, unlike the main screen's own pane-local
// bindings) and finally the layer stack.
func (a *App) handleEvent(ev event.Event) {
	if a.handleGlobalShortcut(ev) {
		a.redraw(false)
		return
	}

	switch ev.Kind {
	case event.KindSystem:
		a.handleSystemEvent(ev.System)
		a.redraw(false)
		return
	}

	// spec.md §4.2: while a task is active (any state other than IDLE),
	// the main screen blocks all key/menu events except the cancel key --
	// only applies when no dialog is on top (the confirm/conflict dialogs
	// themselves must keep working).
	if a.tasks.IsActive() && a.stack.Depth() == 1 {
		if ev.Kind == event.KindKey && ev.Key.Code == event.KeyEscape {
			a.tasks.Cancel()
		}
		a.redraw(false)
		return
	}

	if a.stack.Depth() == 1 && a.handleOperationShortcut(ev) {
		a.redraw(false)
		return
	}

	a.stack.HandleEvent(ev)
	a.redraw(false)
}

// handleGlobalShortcut implements spec.md §4.2 "a small set of global
// shortcuts ... are intercepted first, before the layer stack" and
// §9's resolved open question: global shortcuts are always honored
// regardless of task state, since they never mutate file state.
func (a *App) handleGlobalShortcut(ev event.Event) bool {
	if ev.Kind != event.KindKey {
		return false
	}
	key := ev.Key
	if key.Mods&event.ModCtrl == 0 {
		return false
	}
	switch key.Char {
	case 'q', 'Q':
		a.confirmQuit()
		return true
	case '=', '+':
		if a.desktop {
			a.renderer.ChangeFontSize(1)
		}
		return true
	case '-':
		if a.desktop {
			a.renderer.ChangeFontSize(-1)
		}
		return true
	}
	return false
}

func (a *App) handleSystemEvent(sys event.SystemEvent) {
	switch sys.Kind {
	case event.SystemResize:
		a.grid.Resize(sys.Rows, sys.Cols)
		a.stack.HandleEvent(event.Event{Kind: event.KindSystem, System: sys})
		a.redraw(true)
	case event.SystemClose:
		consumed := a.stack.HandleEvent(event.Event{Kind: event.KindSystem, System: sys})
		if !consumed && a.stack.Depth() == 1 {
			a.confirmQuit()
		}
	}
}

// confirmQuit pushes the quit-confirmation dialog unless one is already
// on top (spec.md §4.2 "quit confirmation").
func (a *App) confirmQuit() {
	if _, ok := a.stack.Top().(*dialog.ChoiceDialog); ok {
		return
	}
	d := dialog.NewChoiceDialog("Quit", "Quit dualpane?", []dialog.Choice{
		{Label: "Yes", Hotkey: 'y', Value: true},
		{Label: "No", Hotkey: 'n', Value: false},
	}, func(c dialog.Choice) {
		if yes, _ := c.Value.(bool); yes {
			a.quit = true
		}
	})
	a.stack.Push(d)
}

// handleOperationShortcut dispatches the cross-pane operations (spec.md
// §4.4 task kinds, §4.6/§4.7 dialogs/viewers) that only make sense when
// no modal is already open. It returns false for anything it does not
// recognize so the caller falls through to the layer stack.
func (a *App) handleOperationShortcut(ev event.Event) bool {
	if ev.Kind != event.KindKey {
		return false
	}
	switch ev.Key.Code {
	case event.KeyF5:
		a.startCopyOrMove(task.VerbCopy)
		return true
	case event.KeyF6:
		a.startCopyOrMove(task.VerbMove)
		return true
	case event.KeyF8, event.KeyDelete:
		a.startDelete()
		return true
	case event.KeyF1:
		a.showHelp()
		return true
	}
	if ev.Key.Mods&event.ModCtrl == 0 {
		return false
	}
	switch ev.Key.Char {
	case 'd', 'D':
		a.openDirectoryDiff()
		return true
	case 'f', 'F':
		a.openSearch()
		return true
	case 'j', 'J':
		a.openJump()
		return true
	case 'r', 'R':
		a.openBatchRename()
		return true
	case 'g', 'G':
		a.openDrives()
		return true
	case 'e', 'E':
		a.extractArchive()
		return true
	case 'k', 'K':
		a.createArchive()
		return true
	}
	return false
}

func (a *App) activePane() interface {
	SelectedPaths() []pathfs.Path
} {
	if a.screen.Active == mainscreen.SideLeft {
		return a.screen.Left
	}
	return a.screen.Right
}

func (a *App) otherRoot() pathfs.Path {
	if a.screen.Active == mainscreen.SideLeft {
		return a.screen.Right.CurrentPath
	}
	return a.screen.Left.CurrentPath
}

// startCopyOrMove starts a copy/move task over the active pane's
// selection into the other pane's current directory (spec.md §4.4
// "Copy/move/delete task", the conventional dual-pane destination rule).
func (a *App) startCopyOrMove(verb task.Verb) {
	sources := a.activePane().SelectedPaths()
	if len(sources) == 0 {
		a.screen.MarkDirty()
		return
	}
	dest := a.otherRoot()
	t := task.NewCopyMoveDeleteTask(a.tasks, a.log, a.prog, verb, sources, dest, a.copyMoveHooks())
	if err := a.tasks.Start(t); err != nil {
		a.log.Errorf(logbuf.SourceFileOp, "start task: %v", err)
	}
}

func (a *App) startDelete() {
	sources := a.activePane().SelectedPaths()
	if len(sources) == 0 {
		a.screen.MarkDirty()
		return
	}
	t := task.NewCopyMoveDeleteTask(a.tasks, a.log, a.prog, task.VerbDelete, sources, nil, a.copyMoveHooks())
	if err := a.tasks.Start(t); err != nil {
		a.log.Errorf(logbuf.SourceFileOp, "start task: %v", err)
	}
}

// copyMoveHooks bridges task.Hooks to the dialog layer (spec.md §4.4's
// callback contract; every hook runs on the main thread, same as the
// event loop itself).
func (a *App) copyMoveHooks() task.Hooks {
	return task.Hooks{
		Confirm: func(proceed func(), cancel func()) {
			d := dialog.NewChoiceDialog("Confirm", "Proceed with this operation?", []dialog.Choice{
				{Label: "Yes", Hotkey: 'y', Value: true},
				{Label: "No", Hotkey: 'n', Value: false},
			}, func(c dialog.Choice) {
				if yes, _ := c.Value.(bool); yes {
					proceed()
				} else {
					cancel()
				}
			})
			a.stack.Push(d)
		},
		ResolveConflict: func(c task.Conflict, decide func(task.ConflictDecision, bool)) {
			d := dialog.NewChoiceDialog("Conflict", c.Dest().Address()+" already exists", []dialog.Choice{
				{Label: "Overwrite", Hotkey: 'o', Value: task.DecisionOverwrite},
				{Label: "Overwrite all", Hotkey: 'a', Value: task.DecisionOverwrite},
				{Label: "Skip", Hotkey: 's', Value: task.DecisionSkip},
				{Label: "Rename", Hotkey: 'r', Value: task.DecisionRename},
				{Label: "Cancel", Hotkey: 'c', Value: task.DecisionCancel},
			}, func(chosen dialog.Choice) {
				d := chosen.Value.(task.ConflictDecision)
				decide(d, chosen.Label == "Overwrite all")
			})
			a.stack.Push(d)
		},
		PromptRename: func(c task.Conflict, accept func(string), cancelReturn func()) {
			d := dialog.NewInputDialog("Rename", "New name:", c.Dest().Name(), accept, cancelReturn)
			a.stack.Push(d)
		},
		OnStateChange: func(s task.State) {
			a.screen.MarkDirty()
		},
		OnCompleted: func(r task.Result) {
			a.screen.MarkDirty()
			a.log.Infof(logbuf.SourceFileOp, "completed: %d ok, %d skipped, %d errors of %d",
				r.SuccessCount, r.SkipCount, r.ErrorCount, r.TotalPlanned)
		},
		InvalidateCache: func(dirs []pathfs.Path) {
			a.invalidate(dirs)
		},
	}
}

func (a *App) invalidate(dirs []pathfs.Path) {
	ctx := context.Background()
	for _, dir := range dirs {
		if dir == nil {
			continue
		}
		if a.screen.Left.CurrentPath.Address() == dir.Address() {
			_ = a.screen.Left.Refresh(ctx)
		}
		if a.screen.Right.CurrentPath.Address() == dir.Address() {
			_ = a.screen.Right.Refresh(ctx)
		}
	}
	a.screen.MarkDirty()
}

// openDirectoryDiff pushes a full-screen recursive diff between the two
// panes' current directories (spec.md §4.7).
func (a *App) openDirectoryDiff() {
	v := viewer.NewDirectoryDiffViewer(a.screen.Left.CurrentPath, a.screen.Right.CurrentPath, a.openDiffFile)
	a.stack.Push(v)
}

// openFile is wired to mainscreen.Screen.OnOpenFile (spec.md §4.6 "open
// file ... invokes an external handler" generalized: a configured
// file-type handler runs as an external command; otherwise a text file
// is pushed into the built-in viewer and a binary file gets an info
// dialog instead of a failed decode attempt).
func (a *App) openFile(p pathfs.Path, side mainscreen.Side) {
	if cmd := a.handlerFor(p.Name()); cmd != "" {
		a.runExternalHandler(cmd, p.Address())
		return
	}

	ctx := context.Background()
	f, err := p.OpenRead(ctx)
	if err != nil {
		a.stack.Push(dialog.NewInfoDialog("Error", fmt.Sprintf("cannot open %s: %v", p.Address(), err)))
		return
	}
	sample := make([]byte, 512)
	n, _ := f.Read(sample)
	f.Close()

	if filetype.DetectKind(sample[:n]) == filetype.KindBinary {
		a.stack.Push(dialog.NewInfoDialog("Binary file", p.Address()+" is not a text file."))
		return
	}
	v := viewer.NewTextViewer(ctx, p, a.cfg.TabWidth)
	a.stack.Push(v)
}

// openDiffFile handles Enter on a file-level node inside the directory
// diff viewer (spec.md §4.7 "open file diff invokes an external
// handler").
func (a *App) openDiffFile(left, right pathfs.Path) {
	name := ""
	if left != nil {
		name = left.Name()
	} else if right != nil {
		name = right.Name()
	}
	cmd := a.handlerFor(name)
	if cmd == "" {
		a.stack.Push(dialog.NewInfoDialog("No handler", "No file-type handler configured for "+name))
		return
	}
	args := []string{}
	if left != nil {
		args = append(args, left.Address())
	}
	if right != nil {
		args = append(args, right.Address())
	}
	a.runExternalHandler(cmd, args...)
}

func (a *App) handlerFor(name string) string {
	ext := extensionOf(name)
	for _, h := range a.cfg.FileTypeHandlers {
		for _, e := range h.Extensions {
			if e == ext {
				return h.Command
			}
		}
	}
	return ""
}

func extensionOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return ""
}

// runExternalHandler launches a configured file-type handler in the
// background; its own stdout/stderr are left attached to the process
// environment (desktop/terminal mode as configured, spec.md §4.9).
func (a *App) runExternalHandler(command string, args ...string) {
	cmd := exec.Command(command, args...)
	if err := cmd.Start(); err != nil {
		a.log.Errorf(logbuf.SourceFileOp, "handler %s failed to start: %v", command, err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			a.log.Warnf(logbuf.SourceFileOp, "handler %s exited: %v", command, err)
		}
	}()
}

// openSearch prompts for a name pattern, then pushes the incremental
// search results dialog (spec.md §4.4 "Search task", §4.6 "Search
// dialog").
func (a *App) openSearch() {
	prompt := dialog.NewInputDialog("Search", "Name pattern (glob):", "*", func(pattern string) {
		list, _ := dialog.NewSearchDialog(a.tasks, a.log, a.activeRoot(), pattern, 500, func(p pathfs.Path) {
			a.screen.MarkDirty()
		}, func() {})
		a.stack.Push(list)
	}, func() {})
	a.stack.Push(prompt)
}

func (a *App) activeRoot() pathfs.Path {
	if a.screen.Active == mainscreen.SideLeft {
		return a.screen.Left.CurrentPath
	}
	return a.screen.Right.CurrentPath
}

// openJump pushes a filterable directory-jump dialog rooted at the active
// pane's current path (spec.md §4.6 "Jump dialog").
func (a *App) openJump() {
	side := a.screen.Active
	d := dialog.NewJumpDialog(a.activeRoot(), a.cfg.ShowHiddenFiles, 2000, func(p pathfs.Path) {
		pane := a.screen.Left
		if side == mainscreen.SideRight {
			pane = a.screen.Right
		}
		pane.CurrentPath = p
		_ = pane.Refresh(context.Background())
		a.screen.MarkDirty()
	}, func() {})
	a.stack.Push(d)
}

// openBatchRename pushes the batch-rename dialog over the active pane's
// selection (spec.md §4.6 "Batch rename dialog").
func (a *App) openBatchRename() {
	paths := a.activePane().SelectedPaths()
	if len(paths) < 2 {
		a.screen.MarkDirty()
		return
	}
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = p.Name()
	}
	d := dialog.NewBatchRenameDialog(names, func(renames map[string]string) {
		ctx := context.Background()
		for _, p := range paths {
			if newName, ok := renames[p.Name()]; ok && newName != "" && newName != p.Name() {
				if err := p.Rename(ctx, newName); err != nil {
					a.log.Errorf(logbuf.SourceFileOp, "rename %s: %v", p.Address(), err)
				}
			}
		}
		_ = a.screen.Left.Refresh(ctx)
		_ = a.screen.Right.Refresh(ctx)
		a.screen.MarkDirty()
	}, func() {})
	a.stack.Push(d)
}

// openDrives pushes the "go to" dialog over local well-known
// directories, plus any configured S3 sources (spec.md §4.6 "Drives
// dialog"). No source is wired by config yet (see DESIGN.md), so
// sources is empty -- the dialog still serves its local half.
func (a *App) openDrives() {
	side := a.screen.Active
	d := dialog.NewDrivesDialog(nil, func(p pathfs.Path) {
		pane := a.screen.Left
		if side == mainscreen.SideRight {
			pane = a.screen.Right
		}
		pane.CurrentPath = p
		_ = pane.Refresh(context.Background())
		a.screen.MarkDirty()
	}, func() {})
	a.stack.Push(d)
}

// isArchiveName recognizes the containers pathfs/archive can index
// (spec.md §4.8).
func isArchiveName(name string) bool {
	return strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz")
}

// extractArchive unpacks the cursor entry of the active pane into the
// other pane's current directory (spec.md §4.4 "Archive create/extract
// task").
func (a *App) extractArchive() {
	sources := a.activePane().SelectedPaths()
	if len(sources) == 0 {
		return
	}
	src := sources[0]
	if !isArchiveName(src.Name()) {
		a.stack.Push(dialog.NewInfoDialog("Extract", src.Name()+" is not a recognized archive (.zip, .tar.gz, .tgz)."))
		return
	}
	ar, err := archive.Open(src.Address())
	if err != nil {
		a.stack.Push(dialog.NewInfoDialog("Extract", "cannot open archive: "+err.Error()))
		return
	}
	t := task.NewExtractTask(a.tasks, a.log, a.prog, ar, a.otherRoot(), a.copyMoveHooks())
	if err := a.tasks.Start(t); err != nil {
		a.log.Errorf(logbuf.SourceArchive, "start extract: %v", err)
	}
}

// createArchive prompts for an archive file name, then packs the active
// pane's selection into it under the other pane's current directory
// (spec.md §4.4 "Archive create/extract task").
func (a *App) createArchive() {
	sources := a.activePane().SelectedPaths()
	if len(sources) == 0 {
		a.screen.MarkDirty()
		return
	}
	prompt := dialog.NewInputDialog("Create archive", "Archive file name:", "archive.zip", func(name string) {
		dest := a.otherRoot().Join(name)
		t := task.NewCreateTask(a.tasks, a.log, a.prog, sources, dest, a.copyMoveHooks())
		if err := a.tasks.Start(t); err != nil {
			a.log.Errorf(logbuf.SourceArchive, "start create: %v", err)
		}
	}, func() {})
	a.stack.Push(prompt)
}

func (a *App) showHelp() {
	a.stack.Push(dialog.NewInfoDialog("Keys", helpText))
}

const helpText = `Tab: switch pane   j/k, up/down: move   l/enter: open   h/backspace: up
space: select   a: select all   A: clear   i: invert
n/s/m/x: sort by name/size/mtime/extension   .: toggle hidden
F5: copy   F6: move   F8/Del: delete
Ctrl+F: search   Ctrl+J: jump   Ctrl+D: directory diff   Ctrl+R: batch rename
Ctrl+G: go to   Ctrl+E: extract archive   Ctrl+K: create archive
Ctrl+Q: quit   Esc: cancel running task / close dialog`
