package catalog

import "strings"

// GenreKind is one of the known movie genres, or GenreOther
type GenreKind int

const (
	GenreAction GenreKind = iota
	GenreAdventure
	GenreAnimation
	GenreComedy
	GenreCrime
	GenreDocumentary
	GenreDrama
	GenreFamily
	GenreFantasy
	GenreHistory
	GenreHorror
	GenreMusic
	GenreMystery
	GenreRomance
	GenreScienceFiction
	GenreThriller
	GenreTVMovie
	GenreWar
	GenreWestern
	// GenreOther holds any taxonomy entry not matching a known kind
	GenreOther
)

var genreNames = map[GenreKind]string{
	GenreAction:         "Action",
	GenreAdventure:      "Adventure",
	GenreAnimation:      "Animation",
	GenreComedy:         "Comedy",
	GenreCrime:          "Crime",
	GenreDocumentary:    "Documentary",
	GenreDrama:          "Drama",
	GenreFamily:         "Family",
	GenreFantasy:        "Fantasy",
	GenreHistory:        "History",
	GenreHorror:         "Horror",
	GenreMusic:          "Music",
	GenreMystery:        "Mystery",
	GenreRomance:        "Romance",
	GenreScienceFiction: "Science Fiction",
	GenreThriller:       "Thriller",
	GenreTVMovie:        "TV Movie",
	GenreWar:            "War",
	GenreWestern:        "Western",
}

// KnownGenres returns every known genre kind, excluding GenreOther
func KnownGenres() []Genre {
	genres := make([]Genre, 0, len(genreNames))
	for k := GenreAction; k < GenreOther; k++ {
		genres = append(genres, Genre{Kind: k})
	}
	return genres
}

// Genre is a movie category. Name is only set for GenreOther.
type Genre struct {
	Kind GenreKind
	Name string
}

// Other returns the fallback genre for an unrecognized name
func Other(name string) Genre {
	return Genre{Kind: GenreOther, Name: name}
}

// String returns the display text of the genre
func (g Genre) String() string {
	if g.Kind == GenreOther {
		return "Other - " + g.Name
	}
	return genreNames[g.Kind]
}

// IsOther reports whether the genre is the open fallback
func (g Genre) IsOther() bool {
	return g.Kind == GenreOther
}

// ParseGenre maps a taxonomy name to a genre by case-insensitive display
// name equality. Anything else becomes Other with the lowercased name.
func ParseGenre(name string) Genre {
	lower := strings.ToLower(name)
	for kind, display := range genreNames {
		if strings.ToLower(display) == lower {
			return Genre{Kind: kind}
		}
	}
	return Other(lower)
}

// FromRaw converts a raw taxonomy entry; entries without a name are rejected
func FromRaw(raw RawGenre) (Genre, bool) {
	if raw.Name == nil {
		return Genre{}, false
	}
	return ParseGenre(*raw.Name), true
}
