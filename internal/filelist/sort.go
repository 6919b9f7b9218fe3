package filelist

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

func applyFilterAndSort(raw []pathfs.Entry, pattern string, showHidden bool, mode SortMode, descending, dirsFirst bool) []pathfs.Entry {
	filtered := make([]pathfs.Entry, 0, len(raw))
	for _, e := range raw {
		if e.Info.IsHidden && !showHidden {
			continue
		}
		if !matchesGlob(pattern, e.DisplayName) {
			continue
		}
		filtered = append(filtered, e)
	}
	sortEntries(filtered, mode, descending, dirsFirst)
	return filtered
}

func sortEntries(entries []pathfs.Entry, mode SortMode, descending, dirsFirst bool) {
	less := func(a, b pathfs.Entry) bool {
		if dirsFirst {
			aDir := a.Info.Kind == pathfs.KindDir
			bDir := b.Info.Kind == pathfs.KindDir
			if aDir != bDir {
				return aDir
			}
		}
		var cmp bool
		switch mode {
		case SortSize:
			cmp = a.Info.Size < b.Info.Size
		case SortMTime:
			cmp = a.Info.MTime.Before(b.Info.MTime)
		case SortExtension:
			ea, eb := strings.ToLower(filepath.Ext(a.DisplayName)), strings.ToLower(filepath.Ext(b.DisplayName))
			if ea != eb {
				cmp = ea < eb
			} else {
				cmp = strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
			}
		default: // SortName
			cmp = strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
		}
		if descending {
			return !cmp && a.DisplayName != b.DisplayName
		}
		return cmp
	}
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
}
