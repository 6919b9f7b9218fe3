package dialog

import (
	"fmt"

	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/task"
)

// searchSink adapts a ListDialog to task.SearchResultSink, converting
// each matched pathfs.Entry to a list Entry (spec.md §4.6 "Search
// dialog ... incremental results").
type searchSink struct {
	list *ListDialog
}

func (s searchSink) Append(e pathfs.Entry) {
	s.list.Append(Entry{Label: e.DisplayName, Path: e.Path.Address(), Value: e.Path})
}

// NewSearchDialog starts a background recursive name search rooted at
// root and streams matches into a list dialog (spec.md §4.6 "Search
// dialog", §4.4 "Search task -- a producer/consumer"). The returned
// *ListDialog is the pushable layer; cancel is called if the dialog is
// closed before the walk completes.
func NewSearchDialog(mgr *task.Manager, log *logbuf.Buffer, root pathfs.Path, namePattern string, maxResults int, onSelect func(pathfs.Path), onCancel func()) (*ListDialog, *task.SearchTask) {
	var d *ListDialog
	var t *task.SearchTask

	d = NewListDialog("Search", namePattern, func(e Entry) {
		if onSelect != nil && e.Value != nil {
			onSelect(e.Value.(pathfs.Path))
		}
	}, func() {
		if t != nil {
			t.Cancel()
		}
		if onCancel != nil {
			onCancel()
		}
	})
	d.SetStatus("searching...")

	sink := searchSink{list: d}
	t = task.NewSearchTask(mgr, log, root, namePattern, maxResults, sink,
		nil,
		func(count int) { d.SetStatus(fmt.Sprintf("%d matches", count)) },
	)
	if err := mgr.Start(t); err != nil {
		d.SetStatus(err.Error())
	}
	return d, t
}
