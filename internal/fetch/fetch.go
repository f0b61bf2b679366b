package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"pinstrap/internal/logger"
)

var (
	// errBadStatus indicates a non-2xx response from the artifact repository.
	errBadStatus = errors.New("unexpected http status")
	// errMissingLength indicates the server did not declare a Content-Length.
	errMissingLength = errors.New("server did not declare content length")
	// errSizeMismatch indicates fewer or more bytes arrived than declared.
	errSizeMismatch = errors.New("transferred size does not match declared size")
)

// DefaultChunkSize is the streaming buffer size for downloads.
const DefaultChunkSize = 100 * 1024

// TransferError wraps any failure of the fetch protocol: HTTP-level errors
// and declared-size mismatches. It is fatal; the launcher never retries.
type TransferError struct {
	// URL is the resource that failed to transfer.
	URL string
	// Err is the underlying cause.
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Result reports the outcome of one Fetch call. Fetched=false means the
// destination already existed and no network I/O occurred.
type Result struct {
	// Fetched is true when a network transfer took place.
	Fetched bool
	// Bytes is the number of bytes written to the destination.
	Bytes int64
}

// Fetcher downloads remote resources with an atomic write-then-rename
// protocol. The zero value is not usable; call New.
type Fetcher struct {
	client    *http.Client
	chunkSize int
}

// New returns a Fetcher over the given client, falling back to
// http.DefaultClient when nil.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &Fetcher{client: client, chunkSize: DefaultChunkSize}
}

// WithChunkSize overrides the streaming buffer size.
func (f *Fetcher) WithChunkSize(size int) *Fetcher {
	if size > 0 {
		f.chunkSize = size
	}

	return f
}

// Fetch downloads url to dest. The protocol guarantees any observer sees
// either no file at dest or the complete, correctly sized one:
//
//  1. A non-empty dest is a cache hit; return immediately with no network I/O.
//  2. Ensure the parent directory exists (already-exists is success).
//  3. Stream the body in fixed-size chunks into a temporary file in the
//     same directory as dest, so the final rename stays on one filesystem.
//  4. Compare bytes written against the declared Content-Length.
//  5. Atomically rename the temporary file onto dest.
//  6. Apply mode bits, when non-zero, after the rename.
//
// The temporary file is removed on every failure path.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string, mode os.FileMode) (Result, error) {
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		logger.DebugKV(ctx, "Destination already cached", "path", dest)

		return Result{Fetched: false}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, fmt.Errorf("create destination directory: %w", err)
	}

	written, err := f.download(ctx, url, dest)
	if err != nil {
		return Result{}, err
	}

	if mode != 0 {
		if err := os.Chmod(dest, mode); err != nil {
			return Result{}, fmt.Errorf("set mode on %s: %w", dest, err)
		}
	}

	logger.InfoKV(ctx, "Fetched artifact", "url", url, "path", dest, "bytes", written)

	return Result{Fetched: true, Bytes: written}, nil
}

// download performs the streaming transfer and atomic rename.
func (f *Fetcher) download(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, &TransferError{URL: url, Err: err}
	}

	response, err := f.client.Do(req)
	if err != nil {
		return 0, &TransferError{URL: url, Err: err}
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return 0, &TransferError{URL: url, Err: fmt.Errorf("%w: %s", errBadStatus, response.Status)}
	}

	declared := response.ContentLength
	if declared < 0 {
		return 0, &TransferError{URL: url, Err: errMissingLength}
	}

	temporary, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temporary file: %w", err)
	}

	temporaryPath := temporary.Name()

	// Unconditional cleanup: after a successful rename the path is gone
	// and the removal is a harmless no-op.
	defer func() {
		_ = os.Remove(temporaryPath)
	}()

	written, err := io.CopyBuffer(temporary, response.Body, make([]byte, f.chunkSize))
	if err != nil {
		_ = temporary.Close()

		return 0, &TransferError{URL: url, Err: err}
	}

	if err = temporary.Sync(); err != nil {
		_ = temporary.Close()

		return 0, fmt.Errorf("sync temporary file: %w", err)
	}

	if err = temporary.Close(); err != nil {
		return 0, fmt.Errorf("close temporary file: %w", err)
	}

	if written != declared {
		return 0, &TransferError{
			URL: url,
			Err: fmt.Errorf("%w: declared %d, written %d", errSizeMismatch, declared, written),
		}
	}

	if err = os.Rename(temporaryPath, dest); err != nil {
		return 0, fmt.Errorf("install %s: %w", dest, err)
	}

	return written, nil
}
