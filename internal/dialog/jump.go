package dialog

import (
	"context"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

// NewJumpDialog builds a list dialog whose producer recursively scans
// root for directories, honoring showHidden -- when root itself is
// hidden, all its descendants are shown regardless (spec.md §4.6 "Jump
// dialog ... context-aware: when the root is itself hidden, all
// descendants are visible"). maxScan bounds the walk (0 = unbounded).
func NewJumpDialog(root pathfs.Path, showHidden bool, maxScan int, onSelect func(pathfs.Path), onCancel func()) *ListDialog {
	d := NewListDialog("Jump to directory", "Filter...", func(e Entry) {
		if onSelect != nil {
			onSelect(e.Value.(pathfs.Path))
		}
	}, onCancel)

	go scanDirectories(d, root, showHidden, maxScan)
	return d
}

func scanDirectories(d *ListDialog, root pathfs.Path, showHidden bool, maxScan int) {
	ctx := context.Background()
	rootInfo, err := root.Stat(ctx)
	forceVisible := err == nil && rootInfo.IsHidden
	count := 0
	walkForJump(ctx, d, root, showHidden || forceVisible, maxScan, &count)
	d.SetStatus("")
}

func walkForJump(ctx context.Context, d *ListDialog, dir pathfs.Path, showHidden bool, maxScan int, count *int) {
	if maxScan > 0 && *count >= maxScan {
		return
	}
	entries, err := dir.IterChildren(ctx)
	if err != nil {
		return
	}
	for _, e := range entries {
		if maxScan > 0 && *count >= maxScan {
			return
		}
		if e.Info.Kind != pathfs.KindDir {
			continue
		}
		if e.Info.IsHidden && !showHidden {
			continue
		}
		*count++
		d.Append(Entry{Label: e.DisplayName, Path: e.Path.Address(), Value: e.Path})
		walkForJump(ctx, d, e.Path, showHidden, maxScan, count)
	}
}
