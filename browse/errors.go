package browse

import "errors"

var (
	// ErrNonContiguousPage is returned when a page is requested out of sequence
	ErrNonContiguousPage = errors.New("page requests must be contiguous")

	// ErrPageOutOfRange is returned when a page beyond the last known page is requested
	ErrPageOutOfRange = errors.New("page is out of range")

	// ErrSessionFailed is returned while the session is in its error state
	ErrSessionFailed = errors.New("browsing session failed")

	// ErrGenresUnavailable wraps a failed genre taxonomy load
	ErrGenresUnavailable = errors.New("genres unavailable")

	// ErrUnknownItem is reported for an identifier not present in the session
	ErrUnknownItem = errors.New("unknown item")

	// ErrNoPoster is reported for an item without an image reference
	ErrNoPoster = errors.New("item has no poster")

	// ErrClosed is returned after the service has been closed
	ErrClosed = errors.New("service is closed")

	// ErrPoolStopped is returned when work is submitted to a stopped pool
	ErrPoolStopped = errors.New("worker pool is stopped")
)
