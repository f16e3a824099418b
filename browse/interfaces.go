package browse

import (
	"context"

	"github.com/s0up4200/marquee/catalog"
)

// Catalog is the remote source the service browses
type Catalog interface {
	// FetchPage retrieves one page of a movie list
	FetchPage(ctx context.Context, list catalog.ListKind, page int) (*catalog.PageResult, error)

	// FetchDetail retrieves the full record of a movie
	FetchDetail(ctx context.Context, id int) (*catalog.RemoteDetail, error)

	// FetchGenres retrieves the raw genre taxonomy
	FetchGenres(ctx context.Context) ([]catalog.RawGenre, error)

	// FetchImage downloads an image payload. A size of 0 requests the original.
	FetchImage(ctx context.Context, ref string, size int, format catalog.ImageFormat) ([]byte, error)
}

// WorkerPool defines the interface for concurrent work execution
type WorkerPool interface {
	// Submit queues work for the pool without blocking
	Submit(work func()) error

	// Stop gracefully stops the worker pool
	Stop(ctx context.Context) error
}
