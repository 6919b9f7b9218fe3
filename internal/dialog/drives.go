package dialog

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mara-voss/dualpane/internal/pathfs"
	"github.com/mara-voss/dualpane/internal/pathfs/local"
	"github.com/mara-voss/dualpane/internal/pathfs/s3"
)

// S3Credentials names a remote bucket source to probe for the drives
// dialog; an empty AccessKey uses the default credential chain.
type S3Credentials struct {
	Label      string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
}

// NewDrivesDialog builds a list dialog seeded with local well-known
// directories, plus an asynchronously produced set of S3 buckets per
// credential set in sources (spec.md §4.6 "Drives dialog"). A source
// that fails to authenticate is shown as a placeholder entry with an
// explanatory description rather than surfaced as an error.
func NewDrivesDialog(sources []S3Credentials, onSelect func(pathfs.Path), onCancel func()) *ListDialog {
	d := NewListDialog("Go to", "Filter...", func(e Entry) {
		if onSelect != nil && e.Value != nil {
			onSelect(e.Value.(pathfs.Path))
		}
	}, onCancel)

	for _, e := range wellKnownDirs() {
		d.Append(e)
	}

	for _, src := range sources {
		src := src
		go func() {
			ctx := context.Background()
			buckets, err := s3.ListBuckets(ctx, src.Region, src.Endpoint, src.AccessKey, src.SecretKey)
			if err != nil {
				d.Append(Entry{Label: src.Label, Description: "unavailable: " + err.Error()})
				return
			}
			for _, bucket := range buckets {
				p, perr := s3.New(bucket, "", src.Region, src.Endpoint, src.AccessKey, src.SecretKey)
				if perr != nil {
					d.Append(Entry{Label: bucket, Description: "unavailable: " + perr.Error()})
					continue
				}
				d.Append(Entry{Label: bucket, Path: "s3://" + bucket, Description: src.Label, Value: pathfs.Path(p)})
			}
		}()
	}

	return d
}

func wellKnownDirs() []Entry {
	var out []Entry
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, Entry{Label: "Home", Path: home, Value: pathfs.Path(local.New(home))})
	}
	if cwd, err := os.Getwd(); err == nil {
		out = append(out, Entry{Label: "Current directory", Path: cwd, Value: pathfs.Path(local.New(cwd))})
	}
	out = append(out, Entry{Label: "Root", Path: string(filepath.Separator), Value: pathfs.Path(local.New(string(filepath.Separator)))})
	for _, p := range []string{"/tmp", "/var", "/etc", "/usr", "/mnt", "/media"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			out = append(out, Entry{Label: p, Path: p, Value: pathfs.Path(local.New(p))})
		}
	}
	return out
}
