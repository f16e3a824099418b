package tmdb

import (
	"time"

	"github.com/s0up4200/marquee/catalog"
)

const dateLayout = "2006-01-02"

// movieDTO is a list entry as returned by the list endpoints
type movieDTO struct {
	ID          int      `json:"id"`
	PosterPath  *string  `json:"poster_path"`
	Title       *string  `json:"title"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"`
	GenreIDs    []int    `json:"genre_ids"`
	VoteAverage *float64 `json:"vote_average"`
}

// moviesDTO is the paginated response of the list endpoints
type moviesDTO struct {
	Page         *int       `json:"page"`
	Results      []movieDTO `json:"results"`
	TotalResults *int       `json:"total_results"`
	TotalPages   *int       `json:"total_pages"`
}

// genreDTO is a taxonomy entry
type genreDTO struct {
	ID   int     `json:"id"`
	Name *string `json:"name"`
}

// genresDTO is the response of the genre list endpoint
type genresDTO struct {
	Genres []genreDTO `json:"genres"`
}

// movieDetailDTO is the response of the movie detail endpoint
type movieDetailDTO struct {
	ID          int        `json:"id"`
	PosterPath  *string    `json:"poster_path"`
	Title       *string    `json:"title"`
	Overview    *string    `json:"overview"`
	ReleaseDate *string    `json:"release_date"`
	Genres      []genreDTO `json:"genres"`
	VoteAverage *float64   `json:"vote_average"`
	Runtime     *int       `json:"runtime"`
	Tagline     *string    `json:"tagline"`
}

// toItem converts a list entry to our catalog item
func (m movieDTO) toItem() catalog.Item {
	genreIDs := m.GenreIDs
	if genreIDs == nil {
		genreIDs = []int{}
	}
	return catalog.Item{
		ID:          m.ID,
		Title:       deref(m.Title),
		Overview:    deref(m.Overview),
		ReleaseDate: parseDate(m.ReleaseDate),
		VoteAverage: m.VoteAverage,
		GenreIDs:    genreIDs,
		PosterPath:  deref(m.PosterPath),
	}
}

// toRemoteDetail converts a detail response, keeping raw genre identifiers
// so the caller can resolve them against its own taxonomy
func (m movieDetailDTO) toRemoteDetail() *catalog.RemoteDetail {
	ids := make([]int, 0, len(m.Genres))
	genres := make([]catalog.Genre, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.ID)
		if genre, ok := catalog.FromRaw(catalog.RawGenre{ID: g.ID, Name: g.Name}); ok {
			genres = append(genres, genre)
		}
	}

	detail := catalog.Detail{
		ID:          m.ID,
		Title:       deref(m.Title),
		Overview:    deref(m.Overview),
		ReleaseDate: parseDate(m.ReleaseDate),
		VoteAverage: m.VoteAverage,
		Genres:      genres,
		Tagline:     deref(m.Tagline),
		PosterPath:  deref(m.PosterPath),
	}
	if m.Runtime != nil {
		detail.Runtime = *m.Runtime
	}

	return &catalog.RemoteDetail{Detail: detail, GenreIDs: ids}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseDate returns nil for missing or malformed dates; upcoming titles
// frequently carry an empty release_date
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
