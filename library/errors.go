package library

import "errors"

var (
	// ErrNotRegistered is returned for a movie that is not in the library
	ErrNotRegistered = errors.New("movie is not registered")

	// ErrNoteNotFound is returned for an unknown note identifier
	ErrNoteNotFound = errors.New("note not found")

	// ErrInvalidRating is returned for a rating outside 0..MaxRating
	ErrInvalidRating = errors.New("rating must be between 0 and 99")

	// ErrInvalidCategory is returned for an unknown category name
	ErrInvalidCategory = errors.New("invalid category")

	// ErrEmptyNote is returned for a note without text
	ErrEmptyNote = errors.New("note text is empty")
)
