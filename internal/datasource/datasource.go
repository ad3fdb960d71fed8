// Package datasource defines the byte-source contract shared by the local
// file and HTTP data sources.
package datasource

import (
	"context"
	"io"
)

// Source opens a stream of source bytes. Callers must close the returned
// reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
