// Package datasource defines where worker input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a readable stream for one input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
