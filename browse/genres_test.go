package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/marquee/catalog"
)

func taxonomy() []catalog.RawGenre {
	return []catalog.RawGenre{
		{ID: 878, Name: strPtr("Science Fiction")},
		{ID: 28, Name: strPtr("action")},
		{ID: 10770, Name: strPtr("TV Movie")},
		{ID: 1, Name: strPtr("Sci-Fi Adventure")},
		{ID: 2},
		{ID: 18, Name: strPtr("Drama")},
	}
}

func TestGenreIndexLoad(t *testing.T) {
	fake := newFakeCatalog()
	fake.genres = taxonomy()

	index := NewGenreIndex(fake, zerolog.Nop())

	var loads [][]catalog.Genre
	index.OnLoad(func(genres []catalog.Genre) {
		loads = append(loads, genres)
	})

	genres, err := index.Load(context.Background())
	require.NoError(t, err)

	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.String()
	}
	assert.Equal(t, []string{"Action", "Drama", "Other - sci-fi adventure", "Science Fiction", "TV Movie"}, names)
	assert.True(t, index.Loaded())

	_, err = index.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fake.callCount("genres"), "a loaded index does not refetch")
	assert.Len(t, loads, 1)

	_, err = index.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fake.callCount("genres"))
	assert.Len(t, loads, 2, "each successful load notifies")
}

func TestGenreIndexLookup(t *testing.T) {
	fake := newFakeCatalog()
	fake.genres = taxonomy()

	index := NewGenreIndex(fake, zerolog.Nop())
	assert.Empty(t, index.Lookup([]int{28}), "nothing resolves before a load")

	_, err := index.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []catalog.Genre{
		{Kind: catalog.GenreAction},
		catalog.Other("sci-fi adventure"),
		{Kind: catalog.GenreDrama},
	}, index.Lookup([]int{28, 1, 2, 999, 18}))
}

func TestGenreIndexCoalescesConcurrentLoads(t *testing.T) {
	fake := newFakeCatalog()
	fake.genres = taxonomy()
	gate := fake.gate("genres")

	index := NewGenreIndex(fake, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			genres, err := index.Load(context.Background())
			assert.NoError(t, err)
			assert.Len(t, genres, 5)
		}()
	}

	require.Eventually(t, func() bool {
		return fake.callCount("genres") == 1
	}, waitFor, tick)
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, 1, fake.callCount("genres"))
}

func TestGenreIndexFailure(t *testing.T) {
	fake := newFakeCatalog()
	fake.genresErr = catalog.StatusError(503, "Service unavailable")

	index := NewGenreIndex(fake, zerolog.Nop())

	_, err := index.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGenresUnavailable)

	var fe *catalog.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 503, fe.StatusCode)
	assert.False(t, index.Loaded())
	assert.Empty(t, index.Genres())
}
