// Package local implements pathfs.Path over the operating system's own
// filesystem calls (spec.md §4.8 "Local"), grounded in rclone's
// backend/local package: direct os.* calls, OS-native copy and rename as
// the same-scheme fast path, metadata preserved via os.Chtimes.
package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

// Path is a local filesystem location.
type Path struct {
	abs string
}

// New wraps an absolute or relative local filesystem path.
func New(p string) *Path {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return &Path{abs: abs}
}

func (p *Path) Scheme() pathfs.Scheme { return pathfs.SchemeLocal }
func (p *Path) Address() string       { return p.abs }
func (p *Path) String() string        { return p.abs }
func (p *Path) Name() string          { return filepath.Base(p.abs) }

func (p *Path) Parent() (pathfs.Path, error) {
	parent := filepath.Dir(p.abs)
	return &Path{abs: parent}, nil
}

func (p *Path) Join(name string) pathfs.Path {
	return &Path{abs: filepath.Join(p.abs, name)}
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return pathfs.ErrNotFound
	}
	if os.IsPermission(err) {
		return pathfs.ErrPermissionDenied
	}
	return pathfs.ErrIO
}

func (p *Path) Exists(ctx context.Context) (bool, error) {
	_, err := os.Lstat(p.abs)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, wrapErr(err)
}

func (p *Path) Stat(ctx context.Context) (pathfs.Info, error) {
	fi, err := os.Lstat(p.abs)
	if err != nil {
		return pathfs.Info{}, wrapErr(err)
	}
	kind := pathfs.KindFile
	var target string
	if fi.Mode()&os.ModeSymlink != 0 {
		kind = pathfs.KindSymlink
		target, _ = os.Readlink(p.abs)
	} else if fi.IsDir() {
		kind = pathfs.KindDir
	}
	return pathfs.Info{
		Size:          fi.Size(),
		MTime:         fi.ModTime(),
		Kind:          kind,
		SymlinkTarget: target,
		IsHidden:      strings.HasPrefix(fi.Name(), "."),
	}, nil
}

func (p *Path) IsDir(ctx context.Context) bool {
	info, err := p.Stat(ctx)
	if err != nil {
		return false
	}
	if info.Kind == pathfs.KindSymlink {
		fi, err := os.Stat(p.abs)
		return err == nil && fi.IsDir()
	}
	return info.Kind == pathfs.KindDir
}

func (p *Path) IsSymlink(ctx context.Context) bool {
	info, err := p.Stat(ctx)
	return err == nil && info.Kind == pathfs.KindSymlink
}

func (p *Path) IterChildren(ctx context.Context) ([]pathfs.Entry, error) {
	dirEntries, err := os.ReadDir(p.abs)
	if err != nil {
		return nil, wrapErr(err)
	}
	entries := make([]pathfs.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		child := &Path{abs: filepath.Join(p.abs, de.Name())}
		info, err := child.Stat(ctx)
		if err != nil {
			continue
		}
		entries = append(entries, pathfs.Entry{
			Path:        child,
			DisplayName: de.Name(),
			Info:        info,
		})
	}
	return entries, nil
}

func (p *Path) OpenRead(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(p.abs)
	if err != nil {
		return nil, wrapErr(err)
	}
	return f, nil
}

func (p *Path) OpenWrite(ctx context.Context) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(p.abs), 0o755); err != nil {
		return nil, wrapErr(err)
	}
	f, err := os.Create(p.abs)
	if err != nil {
		return nil, wrapErr(err)
	}
	return f, nil
}

func (p *Path) Remove(ctx context.Context) error {
	return wrapErr(os.RemoveAll(p.abs))
}

func (p *Path) Rename(ctx context.Context, newName string) error {
	target := filepath.Join(filepath.Dir(p.abs), newName)
	if err := os.Rename(p.abs, target); err != nil {
		return wrapErr(err)
	}
	p.abs = target
	return nil
}

func (p *Path) MakeDir(ctx context.Context) error {
	return wrapErr(os.MkdirAll(p.abs, 0o755))
}

// CopyTo uses the OS rename/copy fast path when dest is also local;
// cross-scheme callers must go through pathfs.CrossStorageCopy instead
// (spec.md §3 invariant).
func (p *Path) CopyTo(ctx context.Context, dest pathfs.Path, overwrite bool) error {
	other, ok := dest.(*Path)
	if !ok {
		return pathfs.CrossStorageCopy(ctx, p, dest, nil, nil)
	}
	if !overwrite {
		if exists, _ := other.Exists(ctx); exists {
			return pathfs.ErrUnsupported
		}
	}
	if info, err := p.Stat(ctx); err == nil && info.Kind == pathfs.KindDir {
		return copyDir(ctx, p.abs, other.abs)
	}
	return copyFile(ctx, p.abs, other.abs)
}

// copyFile streams src into dst in pathfs.ChunkSize pieces via the same
// pathfs.StreamCopy chunked, cancel-aware path cross-storage copies
// already use, removing the partially written destination on cancel or
// error (spec.md §4.4 "checks the cancel flag between files and between
// 1 MiB chunks inside a single file. On cancel, partially written files
// are removed").
func copyFile(ctx context.Context, src, dst string) (err error) {
	if mkErr := os.MkdirAll(filepath.Dir(dst), 0o755); mkErr != nil {
		return wrapErr(mkErr)
	}
	in, err := os.Open(src)
	if err != nil {
		return wrapErr(err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return wrapErr(err)
	}
	defer func() {
		closeErr := out.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()
	if _, err = pathfs.StreamCopy(ctx, out, in, nil, nil); err != nil {
		return err
	}
	if fi, statErr := in.Stat(); statErr == nil {
		_ = os.Chtimes(dst, time.Now(), fi.ModTime())
	}
	return nil
}

func copyDir(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return wrapErr(err)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return wrapErr(err)
	}
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err := copyDir(ctx, s, d); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(ctx, s, d); err != nil {
			return err
		}
	}
	return nil
}
