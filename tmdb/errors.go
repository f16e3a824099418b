package tmdb

import "errors"

// Common errors returned by the TMDB client.
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid tmdb configuration")

	// ErrUnknownList is returned for a list kind without an endpoint
	ErrUnknownList = errors.New("unknown movie list")
)
