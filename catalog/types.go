package catalog

import (
	"fmt"
	"strings"
	"time"
)

// ListKind selects which remote list is browsed
type ListKind int

const (
	// ListPopular is the "popular movies" list
	ListPopular ListKind = iota
	// ListTopRated is the "top rated movies" list
	ListTopRated
	// ListUpcoming is the "upcoming movies" list
	ListUpcoming
)

// AllLists returns every list kind in display order
func AllLists() []ListKind {
	return []ListKind{ListPopular, ListTopRated, ListUpcoming}
}

// String returns the string representation of a ListKind
func (l ListKind) String() string {
	switch l {
	case ListPopular:
		return "popular"
	case ListTopRated:
		return "top-rated"
	case ListUpcoming:
		return "upcoming"
	default:
		return "unknown"
	}
}

// ParseListKind parses the names produced by String, plus a few aliases
func ParseListKind(s string) (ListKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "popular":
		return ListPopular, nil
	case "top-rated", "top_rated", "toprated":
		return ListTopRated, nil
	case "upcoming", "up-coming":
		return ListUpcoming, nil
	}
	return 0, fmt.Errorf("unknown list: %q", s)
}

// Item is a movie entry as received in a list page
type Item struct {
	ID          int
	Title       string
	Overview    string
	ReleaseDate *time.Time
	VoteAverage *float64
	GenreIDs    []int
	Genres      []Genre
	PosterPath  string
	Poster      *Image
}

// HasPoster reports whether the item carries an image reference
func (i Item) HasPoster() bool {
	return i.PosterPath != ""
}

// Year returns the release year, or 0 when unknown
func (i Item) Year() int {
	if i.ReleaseDate == nil {
		return 0
	}
	return i.ReleaseDate.Year()
}

// Detail is the fully resolved record of a movie
type Detail struct {
	ID          int
	Title       string
	Overview    string
	ReleaseDate *time.Time
	VoteAverage *float64
	Genres      []Genre
	Runtime     int
	Tagline     string
	PosterPath  string
	Poster      *Image
}

// DetailFromItem builds a detail record from the list entry already known
func DetailFromItem(item Item, poster *Image) Detail {
	genres := item.Genres
	if genres == nil {
		genres = []Genre{}
	}
	return Detail{
		ID:          item.ID,
		Title:       item.Title,
		Overview:    item.Overview,
		ReleaseDate: item.ReleaseDate,
		VoteAverage: item.VoteAverage,
		Genres:      genres,
		PosterPath:  item.PosterPath,
		Poster:      poster,
	}
}

// RemoteDetail is a detail record as returned by the remote source, before
// genre identifiers are resolved
type RemoteDetail struct {
	Detail
	GenreIDs []int
}

// PageResult is one page of a remote list
type PageResult struct {
	Page       int
	Items      []Item
	TotalPages int
}

// RawGenre is a genre taxonomy entry as sent by the remote source
type RawGenre struct {
	ID   int
	Name *string
}

// ImageFormat is the file format requested for an image
type ImageFormat int

const (
	// FormatJPG requests a JPEG image
	FormatJPG ImageFormat = iota
	// FormatPNG requests a PNG image
	FormatPNG
	// FormatSVG requests an SVG image, which cannot be resized
	FormatSVG
)

// Extension returns the file extension used in image paths
func (f ImageFormat) Extension() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatSVG:
		return "svg"
	default:
		return "jpg"
	}
}

// Image is a decoded-and-validated image payload
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
