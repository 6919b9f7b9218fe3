package sftp

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

// Dialer builds an *ssh.Client for a host, supplied by the caller (config
// layer resolves key/agent/password auth; out of core scope).
type Dialer func(host string) (*ssh.Client, error)

// Path is a location on a remote host reached over SFTP.
type Path struct {
	host   string
	remote string // slash-separated remote path, always absolute
	master *controlMaster
	dialer Dialer
}

// New wraps a remote path on host, sharing host's control master
// connection with every other Path constructed for the same host.
func New(host, remote string, dialer Dialer) *Path {
	if remote == "" {
		remote = "/"
	}
	m := masterFor(host, func() (*ssh.Client, error) { return dialer(host) })
	return &Path{host: host, remote: remote, master: m, dialer: dialer}
}

func (p *Path) Scheme() pathfs.Scheme { return pathfs.SchemeSFTP }
func (p *Path) Address() string       { return p.host + ":" + p.remote }
func (p *Path) String() string        { return p.Address() }
func (p *Path) Name() string          { return path.Base(p.remote) }

func (p *Path) Parent() (pathfs.Path, error) {
	return &Path{host: p.host, remote: path.Dir(p.remote), master: p.master, dialer: p.dialer}, nil
}

func (p *Path) Join(name string) pathfs.Path {
	return &Path{host: p.host, remote: path.Join(p.remote, name), master: p.master, dialer: p.dialer}
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "no such file") || err == sftp.ErrSSHFxNoSuchFile {
		return pathfs.ErrNotFound
	}
	if err == sftp.ErrSSHFxPermissionDenied {
		return pathfs.ErrPermissionDenied
	}
	return pathfs.ErrNetwork
}

func (p *Path) Exists(ctx context.Context) (bool, error) {
	_, err := p.Stat(ctx)
	if err == pathfs.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Path) Stat(ctx context.Context) (pathfs.Info, error) {
	var info pathfs.Info
	err := p.master.withRetry(func(c *sftp.Client) error {
		fi, err := c.Lstat(p.remote)
		if err != nil {
			return err
		}
		kind := pathfs.KindFile
		var target string
		if fi.Mode()&0o170000 == 0o120000 { // S_IFLNK
			kind = pathfs.KindSymlink
			target, _ = c.ReadLink(p.remote)
		} else if fi.IsDir() {
			kind = pathfs.KindDir
		}
		info = pathfs.Info{
			Size:          fi.Size(),
			MTime:         fi.ModTime(),
			Kind:          kind,
			SymlinkTarget: target,
			IsHidden:      strings.HasPrefix(fi.Name(), "."),
		}
		return nil
	})
	if err != nil {
		return pathfs.Info{}, wrapErr(err)
	}
	return info, nil
}

func (p *Path) IsDir(ctx context.Context) bool {
	info, err := p.Stat(ctx)
	return err == nil && info.Kind == pathfs.KindDir
}

func (p *Path) IsSymlink(ctx context.Context) bool {
	info, err := p.Stat(ctx)
	return err == nil && info.Kind == pathfs.KindSymlink
}

func (p *Path) IterChildren(ctx context.Context) ([]pathfs.Entry, error) {
	var entries []pathfs.Entry
	err := p.master.withRetry(func(c *sftp.Client) error {
		infos, err := c.ReadDir(p.remote)
		if err != nil {
			return err
		}
		entries = entries[:0]
		for _, fi := range infos {
			childRemote := path.Join(p.remote, fi.Name())
			child := &Path{host: p.host, remote: childRemote, master: p.master, dialer: p.dialer}
			kind := pathfs.KindFile
			if fi.IsDir() {
				kind = pathfs.KindDir
			}
			entries = append(entries, pathfs.Entry{
				Path:        child,
				DisplayName: fi.Name(),
				Info: pathfs.Info{
					Size:     fi.Size(),
					MTime:    fi.ModTime(),
					Kind:     kind,
					IsHidden: strings.HasPrefix(fi.Name(), "."),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return entries, nil
}

func (p *Path) OpenRead(ctx context.Context) (io.ReadCloser, error) {
	var rc io.ReadCloser
	err := p.master.withRetry(func(c *sftp.Client) error {
		f, err := c.Open(p.remote)
		if err != nil {
			return err
		}
		rc = f
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return rc, nil
}

func (p *Path) OpenWrite(ctx context.Context) (io.WriteCloser, error) {
	var wc io.WriteCloser
	err := p.master.withRetry(func(c *sftp.Client) error {
		if err := p.mkdirAllLocked(c, path.Dir(p.remote)); err != nil {
			return err
		}
		f, err := c.Create(p.remote)
		if err != nil {
			return err
		}
		wc = f
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return wc, nil
}

// mkdirAllLocked falls back to a quoted "mkdir -p" over an ssh session for
// servers whose SFTP subsystem rejects recursive MkdirAll.
func (p *Path) mkdirAllLocked(c *sftp.Client, dir string) error {
	if err := c.MkdirAll(dir); err == nil {
		return nil
	}
	sess, err := p.master.client.NewSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	return sess.Run(fmt.Sprintf("mkdir -p %s", quoteArg(dir)))
}

func (p *Path) Remove(ctx context.Context) error {
	return wrapErr(p.master.withRetry(func(c *sftp.Client) error {
		info, err := c.Lstat(p.remote)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return removeAll(c, p.remote)
		}
		return c.Remove(p.remote)
	}))
}

func removeAll(c *sftp.Client, dir string) error {
	infos, err := c.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, fi := range infos {
		child := path.Join(dir, fi.Name())
		if fi.IsDir() {
			if err := removeAll(c, child); err != nil {
				return err
			}
			continue
		}
		if err := c.Remove(child); err != nil {
			return err
		}
	}
	return c.RemoveDirectory(dir)
}

func (p *Path) Rename(ctx context.Context, newName string) error {
	target := path.Join(path.Dir(p.remote), newName)
	err := p.master.withRetry(func(c *sftp.Client) error {
		return c.Rename(p.remote, target)
	})
	if err != nil {
		return wrapErr(err)
	}
	p.remote = target
	return nil
}

func (p *Path) MakeDir(ctx context.Context) error {
	return wrapErr(p.master.withRetry(func(c *sftp.Client) error {
		return p.mkdirAllLocked(c, p.remote)
	}))
}

// CopyTo always streams: even host-to-same-host SFTP copies go through the
// generic byte-stream path, since SFTP has no native server-side copy
// verb (spec.md §3 invariant: a fast path exists only same-scheme AND the
// backend supports one; SFTP does not).
func (p *Path) CopyTo(ctx context.Context, dest pathfs.Path, overwrite bool) error {
	if !overwrite {
		if exists, _ := dest.Exists(ctx); exists {
			return pathfs.ErrUnsupported
		}
	}
	return pathfs.CrossStorageCopy(ctx, p, dest, nil, nil)
}

// KeepAliveIfStale sends a keepalive no-op once aliveCheckInterval has
// elapsed since the last check, resolving spec.md §9's Open Question as
// synchronous-at-next-operation.
func (p *Path) KeepAliveIfStale() {
	p.master.mu.Lock()
	stale := time.Since(p.master.lastChecked) >= aliveCheckInterval
	p.master.mu.Unlock()
	if stale {
		_, _ = p.master.getClient()
	}
}
