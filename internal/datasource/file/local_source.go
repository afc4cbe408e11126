// Package file implements local filesystem inputs: discovery of CSV files in
// a directory and opening them for streaming reads.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"csvxform/internal/datasource"
)

var _ datasource.Source = (*Local)(nil)

// Local is a filesystem data source that opens files from the local disk.
type Local struct {
	path     string
	encoding string
}

// NewLocal returns a Local data source bound to path. Input is read as UTF-8
// unless WithEncoding selects another charset.
func NewLocal(path string) *Local { return &Local{path: path} }

// WithEncoding sets the charset the file is stored in (for example
// "windows-1250"). An empty name or any UTF-8 alias disables decoding.
func (l *Local) WithEncoding(name string) *Local {
	l.encoding = name
	return l
}

// Path returns the bound filesystem path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// Behavior:
//   - If ctx is already done, Open returns ctx.Err() without touching the
//     filesystem.
//   - Filesystem errors are wrapped with the path and still match
//     errors.Is(err, os.ErrNotExist) and friends.
//   - On Linux the kernel is told the file will be read sequentially.
//   - When an encoding is set, the returned reader yields UTF-8.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	enc, err := ResolveEncoding(l.encoding)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)

	if enc == nil {
		return f, nil
	}
	return decodingReader{
		Reader: transform.NewReader(f, enc.NewDecoder()),
		Closer: f,
	}, nil
}

type decodingReader struct {
	io.Reader
	io.Closer
}

// ResolveEncoding looks up a charset by its WHATWG name or alias. It returns
// a nil Encoding for "" and UTF-8, meaning no decoding is needed.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown input encoding %q: %w", name, err)
	}
	if canon, _ := htmlindex.Name(enc); canon == "utf-8" {
		return nil, nil
	}
	return enc, nil
}
