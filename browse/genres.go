package browse

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/s0up4200/marquee/catalog"
)

const genresFlightKey = "genres"

// GenreIndex maps remote genre identifiers to genres. It loads the
// taxonomy once and serves the cached, sorted list afterwards.
type GenreIndex struct {
	client Catalog
	logger zerolog.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	loaded bool
	sorted []catalog.Genre
	byID   map[int]catalog.Genre
	onLoad func([]catalog.Genre)
}

// NewGenreIndex creates an empty index backed by client
func NewGenreIndex(client Catalog, logger zerolog.Logger) *GenreIndex {
	return &GenreIndex{
		client: client,
		logger: logger,
		byID:   make(map[int]catalog.Genre),
	}
}

// OnLoad registers fn to receive the sorted list after every successful load
func (g *GenreIndex) OnLoad(fn func([]catalog.Genre)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onLoad = fn
}

// Load returns the sorted genre list, fetching the taxonomy on first use.
// Concurrent calls share a single fetch.
func (g *GenreIndex) Load(ctx context.Context) ([]catalog.Genre, error) {
	g.mu.RLock()
	if g.loaded {
		defer g.mu.RUnlock()
		return cloneGenres(g.sorted), nil
	}
	g.mu.RUnlock()

	return g.fetch(ctx, false)
}

// Refresh fetches the taxonomy again regardless of what is cached
func (g *GenreIndex) Refresh(ctx context.Context) ([]catalog.Genre, error) {
	return g.fetch(ctx, true)
}

func (g *GenreIndex) fetch(ctx context.Context, force bool) ([]catalog.Genre, error) {
	v, err, shared := g.group.Do(genresFlightKey, func() (any, error) {
		if !force {
			g.mu.RLock()
			loaded, sorted := g.loaded, g.sorted
			g.mu.RUnlock()
			if loaded {
				return sorted, nil
			}
		}

		raw, err := g.client.FetchGenres(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGenresUnavailable, err)
		}

		sorted, byID := buildIndex(raw)

		g.mu.Lock()
		g.loaded = true
		g.sorted = sorted
		g.byID = byID
		onLoad := g.onLoad
		g.mu.Unlock()

		g.logger.Debug().Int("count", len(sorted)).Msg("Loaded genre taxonomy")

		if onLoad != nil {
			onLoad(cloneGenres(sorted))
		}
		return sorted, nil
	})
	if err != nil {
		g.logger.Warn().Err(err).Msg("Failed to load genre taxonomy")
		return nil, err
	}
	if shared {
		g.logger.Trace().Msg("Genre load coalesced with an in-flight fetch")
	}

	return cloneGenres(v.([]catalog.Genre)), nil
}

// Genres returns the current sorted list, empty until a load succeeds
func (g *GenreIndex) Genres() []catalog.Genre {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return cloneGenres(g.sorted)
}

// Loaded reports whether a load has succeeded
func (g *GenreIndex) Loaded() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.loaded
}

// Lookup maps raw identifiers to genres, dropping unknown ones
func (g *GenreIndex) Lookup(ids []int) []catalog.Genre {
	g.mu.RLock()
	defer g.mu.RUnlock()

	genres := make([]catalog.Genre, 0, len(ids))
	for _, id := range ids {
		if genre, ok := g.byID[id]; ok {
			genres = append(genres, genre)
		}
	}
	return genres
}

func buildIndex(raw []catalog.RawGenre) ([]catalog.Genre, map[int]catalog.Genre) {
	byID := make(map[int]catalog.Genre, len(raw))
	sorted := make([]catalog.Genre, 0, len(raw))

	for _, r := range raw {
		genre, ok := catalog.FromRaw(r)
		if !ok {
			continue
		}
		byID[r.ID] = genre
		sorted = append(sorted, genre)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})
	return sorted, byID
}

func cloneGenres(genres []catalog.Genre) []catalog.Genre {
	out := make([]catalog.Genre, len(genres))
	copy(out, genres)
	return out
}
