// Package library keeps the user's personal movie register: movies picked
// from the catalog, each with a rating, a category and free-text notes.
//
// Records are stored in a single bbolt file, one JSON document per movie.
package library
