// Package archive implements a read-only pathfs.Path view over a zip or
// tar.gz file (spec.md §4.8 "Archive": listing and read streaming; Path
// itself has no writer, since a single member can't be rewritten without
// a full repack), plus the Writer used by the archive-create task to do
// that repack (spec.md:209 "writes require a full repack, handled by the
// archive-create task"). No ecosystem archive codec appears anywhere in
// the retrieval pack's dependency closure, so this corner is stdlib
// (archive/zip, archive/tar, compress/gzip) — see DESIGN.md.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

// Format distinguishes the archive container.
type Format int

const (
	FormatZip Format = iota
	FormatTarGz
)

// node is one entry of a pre-read archive index, built once per archive
// file and shared by every Path view into it.
type node struct {
	name     string // full slash-separated inner path
	isDir    bool
	size     int64
	mtime    time.Time
	children map[string]*node
}

// index is the in-memory tree for one archive file.
type index struct {
	archivePath string
	format      Format
	root        *node
}

func newNode(name string, isDir bool) *node {
	return &node{name: name, isDir: isDir, children: map[string]*node{}}
}

func (ix *index) insert(name string, isDir bool, size int64, mtime time.Time) *node {
	parts := strings.Split(strings.Trim(name, "/"), "/")
	cur := ix.root
	for i, part := range parts {
		last := i == len(parts)-1
		child, ok := cur.children[part]
		if !ok {
			child = newNode(part, !last || isDir)
			cur.children[part] = child
		}
		if last {
			child.isDir = isDir
			child.size = size
			child.mtime = mtime
		}
		cur = child
	}
	return cur
}

func buildIndex(archivePath string) (*index, error) {
	ix := &index{archivePath: archivePath, root: newNode("", true)}
	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		ix.format = FormatZip
		zr, err := zip.OpenReader(archivePath)
		if err != nil {
			return nil, pathfs.ErrIO
		}
		defer zr.Close()
		for _, f := range zr.File {
			ix.insert(f.Name, f.FileInfo().IsDir(), int64(f.UncompressedSize64), f.Modified)
		}
	case strings.HasSuffix(archivePath, ".tar.gz") || strings.HasSuffix(archivePath, ".tgz"):
		ix.format = FormatTarGz
		f, err := os.Open(archivePath)
		if err != nil {
			return nil, pathfs.ErrIO
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, pathfs.ErrIO
		}
		defer gz.Close()
		tr := tar.NewReader(gz)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, pathfs.ErrIO
			}
			ix.insert(hdr.Name, hdr.Typeflag == tar.TypeDir, hdr.Size, hdr.ModTime)
		}
	default:
		return nil, fmt.Errorf("archive: unrecognized container %q", archivePath)
	}
	return ix, nil
}

// Path identifies a member inside an archive (or the archive's own root).
type Path struct {
	ix    *index
	inner string // slash-separated, "" for the archive root
}

// Open reads and indexes archivePath, returning a Path at its root.
func Open(archivePath string) (*Path, error) {
	ix, err := buildIndex(archivePath)
	if err != nil {
		return nil, err
	}
	return &Path{ix: ix, inner: ""}, nil
}

func (p *Path) Scheme() pathfs.Scheme { return pathfs.SchemeArchive }
func (p *Path) Address() string       { return p.ix.archivePath + "!" + p.inner }
func (p *Path) String() string        { return p.Address() }

func (p *Path) Name() string {
	if p.inner == "" {
		return path.Base(p.ix.archivePath)
	}
	return path.Base(p.inner)
}

func (p *Path) lookup() *node {
	if p.inner == "" {
		return p.ix.root
	}
	cur := p.ix.root
	for _, part := range strings.Split(p.inner, "/") {
		child, ok := cur.children[part]
		if !ok {
			return nil
		}
		cur = child
	}
	return cur
}

func (p *Path) Parent() (pathfs.Path, error) {
	if p.inner == "" {
		return p, nil
	}
	return &Path{ix: p.ix, inner: path.Dir(p.inner)}, nil
}

func (p *Path) Join(name string) pathfs.Path {
	if p.inner == "" {
		return &Path{ix: p.ix, inner: name}
	}
	return &Path{ix: p.ix, inner: p.inner + "/" + name}
}

func (p *Path) Exists(ctx context.Context) (bool, error) { return p.lookup() != nil, nil }

func (p *Path) Stat(ctx context.Context) (pathfs.Info, error) {
	n := p.lookup()
	if n == nil {
		return pathfs.Info{}, pathfs.ErrNotFound
	}
	kind := pathfs.KindFile
	if n.isDir {
		kind = pathfs.KindDir
	}
	return pathfs.Info{Size: n.size, MTime: n.mtime, Kind: kind, IsHidden: strings.HasPrefix(n.name, ".")}, nil
}

func (p *Path) IsDir(ctx context.Context) bool {
	n := p.lookup()
	return n != nil && n.isDir
}

func (p *Path) IsSymlink(ctx context.Context) bool { return false }

func (p *Path) IterChildren(ctx context.Context) ([]pathfs.Entry, error) {
	n := p.lookup()
	if n == nil || !n.isDir {
		return nil, pathfs.ErrNotFound
	}
	entries := make([]pathfs.Entry, 0, len(n.children))
	for name, child := range n.children {
		kind := pathfs.KindFile
		if child.isDir {
			kind = pathfs.KindDir
		}
		entries = append(entries, pathfs.Entry{
			Path:        p.Join(name),
			DisplayName: name,
			Info:        pathfs.Info{Size: child.size, MTime: child.mtime, Kind: kind},
		})
	}
	return entries, nil
}

// OpenRead re-scans the archive container for the member's bytes; the
// index only tracks metadata, not content offsets, keeping memory bounded
// for large archives.
func (p *Path) OpenRead(ctx context.Context) (io.ReadCloser, error) {
	switch p.ix.format {
	case FormatZip:
		zr, err := zip.OpenReader(p.ix.archivePath)
		if err != nil {
			return nil, pathfs.ErrIO
		}
		for _, f := range zr.File {
			if strings.Trim(f.Name, "/") == p.inner {
				rc, err := f.Open()
				if err != nil {
					zr.Close()
					return nil, pathfs.ErrIO
				}
				return &zipMemberReader{zr: zr, rc: rc}, nil
			}
		}
		zr.Close()
		return nil, pathfs.ErrNotFound
	case FormatTarGz:
		f, err := os.Open(p.ix.archivePath)
		if err != nil {
			return nil, pathfs.ErrIO
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, pathfs.ErrIO
		}
		tr := tar.NewReader(gz)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				f.Close()
				return nil, pathfs.ErrIO
			}
			if strings.Trim(hdr.Name, "/") == p.inner {
				return &tarMemberReader{f: f, gz: gz, tr: tr}, nil
			}
		}
		f.Close()
		return nil, pathfs.ErrNotFound
	}
	return nil, pathfs.ErrUnsupported
}

type zipMemberReader struct {
	zr *zip.ReadCloser
	rc io.ReadCloser
}

func (r *zipMemberReader) Read(p []byte) (int, error) { return r.rc.Read(p) }
func (r *zipMemberReader) Close() error {
	r.rc.Close()
	return r.zr.Close()
}

// tarMemberReader streams directly off the tar reader positioned at the
// member; Close releases the underlying gzip and file handles.
type tarMemberReader struct {
	f  *os.File
	gz *gzip.Reader
	tr *tar.Reader
}

func (r *tarMemberReader) Read(p []byte) (int, error) { return r.tr.Read(p) }
func (r *tarMemberReader) Close() error {
	r.gz.Close()
	return r.f.Close()
}

func (p *Path) OpenWrite(ctx context.Context) (io.WriteCloser, error) {
	return nil, pathfs.ErrUnsupported
}
func (p *Path) Remove(ctx context.Context) error                        { return pathfs.ErrUnsupported }
func (p *Path) Rename(ctx context.Context, newName string) error        { return pathfs.ErrUnsupported }
func (p *Path) MakeDir(ctx context.Context) error                       { return pathfs.ErrUnsupported }
func (p *Path) CopyTo(ctx context.Context, dest pathfs.Path, overwrite bool) error {
	if !overwrite {
		if exists, _ := dest.Exists(ctx); exists {
			return pathfs.ErrUnsupported
		}
	}
	return pathfs.CrossStorageCopy(ctx, p, dest, nil, nil)
}

// FormatForName picks the container format from an archive file's
// extension, the same suffix matching buildIndex uses to open one.
func FormatForName(name string) (Format, error) {
	switch {
	case strings.HasSuffix(name, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		return FormatTarGz, nil
	default:
		return 0, fmt.Errorf("archive: unrecognized container %q", name)
	}
}

// Writer streams files into a new zip or tar.gz container (spec.md:209
// "writes require a full repack, handled by the archive-create task").
// It wraps an arbitrary io.Writer rather than creating its own file so
// the archive-create task can write through any pathfs.Path backend's
// OpenWrite, not just the local filesystem.
type Writer struct {
	format Format
	zw     *zip.Writer
	gz     *gzip.Writer
	tw     *tar.Writer
}

// NewWriter begins a new container of the given format over w.
func NewWriter(format Format, w io.Writer) *Writer {
	switch format {
	case FormatZip:
		return &Writer{format: format, zw: zip.NewWriter(w)}
	default: // FormatTarGz
		gz := gzip.NewWriter(w)
		return &Writer{format: format, gz: gz, tw: tar.NewWriter(gz)}
	}
}

// AddFile streams size bytes from r into the container as a regular file
// member named name (slash-separated, relative to the archive root).
func (w *Writer) AddFile(name string, r io.Reader, size int64, mtime time.Time) error {
	switch w.format {
	case FormatZip:
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: mtime}
		hdr.SetMode(0o644)
		fw, err := w.zw.CreateHeader(hdr)
		if err != nil {
			return pathfs.ErrIO
		}
		if _, err := io.Copy(fw, r); err != nil {
			return pathfs.ErrIO
		}
		return nil
	default: // FormatTarGz
		hdr := &tar.Header{Name: name, Size: size, Mode: 0o644, ModTime: mtime, Typeflag: tar.TypeReg}
		if err := w.tw.WriteHeader(hdr); err != nil {
			return pathfs.ErrIO
		}
		if _, err := io.Copy(w.tw, r); err != nil {
			return pathfs.ErrIO
		}
		return nil
	}
}

// AddDir writes an explicit directory entry, needed to preserve empty
// directories (a file member's leading path components are implicit in
// both formats otherwise).
func (w *Writer) AddDir(name string, mtime time.Time) error {
	name = strings.TrimSuffix(name, "/") + "/"
	switch w.format {
	case FormatZip:
		hdr := &zip.FileHeader{Name: name, Modified: mtime}
		hdr.SetMode(0o755 | os.ModeDir)
		_, err := w.zw.CreateHeader(hdr)
		if err != nil {
			return pathfs.ErrIO
		}
		return nil
	default: // FormatTarGz
		hdr := &tar.Header{Name: name, Mode: 0o755, ModTime: mtime, Typeflag: tar.TypeDir}
		if err := w.tw.WriteHeader(hdr); err != nil {
			return pathfs.ErrIO
		}
		return nil
	}
}

// Close flushes and closes every layer of the container (tar writer,
// then gzip writer for FormatTarGz; zip writer for FormatZip). It does
// not close the underlying io.Writer -- that is the caller's.
func (w *Writer) Close() error {
	if w.zw != nil {
		if err := w.zw.Close(); err != nil {
			return pathfs.ErrIO
		}
		return nil
	}
	if err := w.tw.Close(); err != nil {
		return pathfs.ErrIO
	}
	if err := w.gz.Close(); err != nil {
		return pathfs.ErrIO
	}
	return nil
}
