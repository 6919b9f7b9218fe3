package pathfs

import (
	"context"
	"io"
)

// ChunkSize is the unit of cancellation/progress granularity for streamed
// transfers (spec.md §4.4, §5: "≤ 1 MiB of data").
const ChunkSize = 1 << 20 // 1 MiB

// ProgressFunc is invoked after each chunk with the cumulative bytes
// written for the current item.
type ProgressFunc func(bytesDone int64)

// CancelFunc reports whether the operation should abort now.
type CancelFunc func() bool

// StreamCopy copies src to dst in ChunkSize pieces, checking cancel
// between chunks (spec.md §5 ordering guarantees, §8 property 4). It is
// the only path cross-storage copies take (spec.md §3, §4.8 "Cross-storage
// copy ... always streams").
func StreamCopy(ctx context.Context, dst io.Writer, src io.Reader, progress ProgressFunc, cancel CancelFunc) (int64, error) {
	buf := make([]byte, ChunkSize)
	var total int64
	for {
		if cancel != nil && cancel() {
			return total, ErrCancelled
		}
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			written, writeErr := dst.Write(buf[:n])
			total += int64(written)
			if progress != nil {
				progress(total)
			}
			if writeErr != nil {
				return total, writeErr
			}
		}
		if readErr == io.EOF {
			return total, nil
		}
		if readErr != nil {
			return total, readErr
		}
	}
}

// CrossStorageCopy streams src's bytes into dest regardless of scheme,
// removing the partially written destination on cancellation or error
// (spec.md §4.4 "On cancel, partially written files are removed").
func CrossStorageCopy(ctx context.Context, src, dest Path, progress ProgressFunc, cancel CancelFunc) (err error) {
	r, err := src.OpenRead(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := dest.OpenWrite(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := w.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			_ = dest.Remove(ctx)
		}
	}()

	_, err = StreamCopy(ctx, w, r, progress, cancel)
	return err
}
