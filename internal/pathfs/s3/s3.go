// Package s3 implements pathfs.Path over an S3-compatible object store,
// grounded in rclone's backend/s3: aws-sdk-go session/credential-chain
// construction, prefix listing standing in for directories, no native
// rename, and a listing cache with a TTL (the pack's fs/cache idiom,
// reimplemented here with patrickmn/go-cache).
package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	gocache "github.com/patrickmn/go-cache"

	"github.com/mara-voss/dualpane/internal/pathfs"
)

// listingTTL bounds how long a directory listing is trusted before a
// fresh ListObjectsV2 call is made (spec.md §4.8 "Listings are cached with
// a time-to-live").
const listingTTL = 15 * time.Second

// client wraps the shared S3 client, session, and listing cache for one
// endpoint/credential set.
type client struct {
	svc    *s3.S3
	cache  *gocache.Cache
}

func newClient(region, endpoint, accessKey, secretKey string) (*client, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	if accessKey != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(accessKey, secretKey, ""))
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return &client{svc: s3.New(sess), cache: gocache.New(listingTTL, 2*listingTTL)}, nil
}

// Path is a bucket+key location. An empty key addresses the bucket root.
type Path struct {
	c      *client
	bucket string
	key    string // no leading slash; "" or ending in "/" for a "directory"
}

// New wraps a bucket/key pair, using the supplied (possibly empty)
// region/endpoint/credentials to build the underlying client.
func New(bucket, key, region, endpoint, accessKey, secretKey string) (*Path, error) {
	c, err := newClient(region, endpoint, accessKey, secretKey)
	if err != nil {
		return nil, err
	}
	return &Path{c: c, bucket: bucket, key: strings.TrimPrefix(key, "/")}, nil
}

func (p *Path) Scheme() pathfs.Scheme { return pathfs.SchemeS3 }
func (p *Path) Address() string       { return p.bucket + "/" + p.key }
func (p *Path) String() string        { return "s3://" + p.Address() }

func (p *Path) Name() string {
	trimmed := strings.TrimSuffix(p.key, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	if trimmed == "" {
		return p.bucket
	}
	return trimmed
}

func (p *Path) Parent() (pathfs.Path, error) {
	trimmed := strings.TrimSuffix(p.key, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return &Path{c: p.c, bucket: p.bucket, key: ""}, nil
	}
	return &Path{c: p.c, bucket: p.bucket, key: trimmed[:i+1]}, nil
}

func (p *Path) Join(name string) pathfs.Path {
	base := p.key
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Path{c: p.c, bucket: p.bucket, key: base + name}
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return pathfs.ErrNotFound
		case "AccessDenied":
			return pathfs.ErrPermissionDenied
		}
	}
	return pathfs.ErrNetwork
}

// IsDir is inferred from whether any object has this key as a prefix
// (spec.md §4.8 "is_dir is inferred from the presence of children").
func (p *Path) IsDir(ctx context.Context) bool {
	if p.key == "" || strings.HasSuffix(p.key, "/") {
		return true
	}
	return p.hasChildrenPrefix(ctx)
}

func (p *Path) hasChildrenPrefix(ctx context.Context) bool {
	prefix := p.key + "/"
	out, err := p.c.svc.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int64(1),
	})
	return err == nil && (len(out.Contents) > 0 || len(out.CommonPrefixes) > 0)
}

func (p *Path) IsSymlink(ctx context.Context) bool { return false }

func (p *Path) Exists(ctx context.Context) (bool, error) {
	if p.IsDir(ctx) {
		return true, nil
	}
	_, err := p.c.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == "NotFound" {
			return false, nil
		}
		return false, wrapErr(err)
	}
	return true, nil
}

func (p *Path) Stat(ctx context.Context) (pathfs.Info, error) {
	if p.IsDir(ctx) {
		return pathfs.Info{Kind: pathfs.KindDir}, nil
	}
	out, err := p.c.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	if err != nil {
		return pathfs.Info{}, wrapErr(err)
	}
	info := pathfs.Info{Kind: pathfs.KindFile}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		info.MTime = *out.LastModified
	}
	return info, nil
}

// IterChildren lists one "directory level" under this key, using
// Delimiter "/" so sub-prefixes behave as subdirectories. Results are
// cached for listingTTL.
func (p *Path) IterChildren(ctx context.Context) ([]pathfs.Entry, error) {
	cacheKey := p.bucket + "\x00" + p.key
	if cached, ok := p.c.cache.Get(cacheKey); ok {
		return cached.([]pathfs.Entry), nil
	}

	prefix := p.key
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var entries []pathfs.Entry
	err := p.c.svc.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(p.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(*cp.Prefix, prefix), "/")
			entries = append(entries, pathfs.Entry{
				Path:        &Path{c: p.c, bucket: p.bucket, key: *cp.Prefix},
				DisplayName: name,
				Info:        pathfs.Info{Kind: pathfs.KindDir},
			})
		}
		for _, obj := range page.Contents {
			if *obj.Key == prefix {
				continue
			}
			name := strings.TrimPrefix(*obj.Key, prefix)
			entries = append(entries, pathfs.Entry{
				Path:        &Path{c: p.c, bucket: p.bucket, key: *obj.Key},
				DisplayName: name,
				Info: pathfs.Info{
					Kind:  pathfs.KindFile,
					Size:  aws.Int64Value(obj.Size),
					MTime: aws.TimeValue(obj.LastModified),
				},
			})
		}
		return true
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	p.c.cache.Set(cacheKey, entries, gocache.DefaultExpiration)
	return entries, nil
}

func (p *Path) OpenRead(ctx context.Context) (io.ReadCloser, error) {
	out, err := p.c.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return out.Body, nil
}

// s3Writer buffers the whole object in memory, then performs a single
// PutObject on Close — S3 has no append semantics. Memory use grows with
// the object size, whatever chunk size the caller writes in; no
// multipart upload is used.
type s3Writer struct {
	p   *Path
	ctx context.Context
	buf bytes.Buffer
}

func (w *s3Writer) Write(b []byte) (int, error) { return w.buf.Write(b) }

func (w *s3Writer) Close() error {
	_, err := w.p.c.svc.PutObjectWithContext(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.p.bucket),
		Key:    aws.String(w.p.key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	if err == nil {
		w.p.c.cache.Flush()
	}
	return wrapErr(err)
}

func (p *Path) OpenWrite(ctx context.Context) (io.WriteCloser, error) {
	return &s3Writer{p: p, ctx: ctx}, nil
}

func (p *Path) Remove(ctx context.Context) error {
	_, err := p.c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key),
	})
	p.c.cache.Flush()
	return wrapErr(err)
}

// Rename is unsupported: S3 has no atomic rename primitive (spec.md §4.8
// "rename is not supported").
func (p *Path) Rename(ctx context.Context, newName string) error {
	return pathfs.ErrUnsupported
}

// MakeDir is a no-op: S3 "directories" come into being implicitly on
// first write under a prefix (spec.md §4.8 "make_dir is a no-op").
func (p *Path) MakeDir(ctx context.Context) error { return nil }

func (p *Path) CopyTo(ctx context.Context, dest pathfs.Path, overwrite bool) error {
	if !overwrite {
		if exists, _ := dest.Exists(ctx); exists {
			return pathfs.ErrUnsupported
		}
	}
	if other, ok := dest.(*Path); ok && other.bucket == p.bucket {
		_, err := p.c.svc.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(other.bucket),
			Key:        aws.String(other.key),
			CopySource: aws.String(p.bucket + "/" + p.key),
		})
		if err == nil {
			p.c.cache.Flush()
		}
		return wrapErr(err)
	}
	return pathfs.CrossStorageCopy(ctx, p, dest, nil, nil)
}

// ListBuckets enumerates the buckets visible to the given credentials,
// the producer behind the drives dialog's asynchronous remote-location
// listing (spec.md §4.6 "Drives dialog ... an asynchronously produced
// set of remote locations (e.g., S3 buckets)").
func ListBuckets(ctx context.Context, region, endpoint, accessKey, secretKey string) ([]string, error) {
	c, err := newClient(region, endpoint, accessKey, secretKey)
	if err != nil {
		return nil, err
	}
	out, err := c.svc.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		if b.Name != nil {
			names = append(names, *b.Name)
		}
	}
	return names, nil
}
