package browse

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/s0up4200/marquee/catalog"
)

// fakeCatalog implements Catalog for testing. Calls whose key has a gate
// block until the gate is closed.
type fakeCatalog struct {
	mu sync.Mutex

	pages     map[catalog.ListKind]map[int]*catalog.PageResult
	pageErrs  map[string]error
	details   map[int]*catalog.RemoteDetail
	detailErr map[int]error
	genres    []catalog.RawGenre
	genresErr error
	image     []byte

	gates        map[string]chan struct{}
	ignoreCancel bool

	calls     map[string]int
	cancelled map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		pages:     make(map[catalog.ListKind]map[int]*catalog.PageResult),
		pageErrs:  make(map[string]error),
		details:   make(map[int]*catalog.RemoteDetail),
		detailErr: make(map[int]error),
		gates:     make(map[string]chan struct{}),
		calls:     make(map[string]int),
		cancelled: make(map[string]int),
	}
}

func pageKey(list catalog.ListKind, page int) string {
	return fmt.Sprintf("page:%s:%d", list, page)
}

func detailKey(id int) string {
	return fmt.Sprintf("detail:%d", id)
}

func imageKey(ref string, size int) string {
	return fmt.Sprintf("image:%s:%d", ref, size)
}

// addList registers totalPages pages of pageSize items each; identifiers
// start at base and increase across pages
func (f *fakeCatalog) addList(list catalog.ListKind, base, pageSize, totalPages int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pages := make(map[int]*catalog.PageResult, totalPages)
	for n := 1; n <= totalPages; n++ {
		items := make([]catalog.Item, pageSize)
		for i := range items {
			id := base + (n-1)*pageSize + i
			items[i] = catalog.Item{
				ID:         id,
				Title:      fmt.Sprintf("Movie %d", id),
				GenreIDs:   []int{28},
				PosterPath: fmt.Sprintf("/poster-%d.jpg", id),
			}
		}
		pages[n] = &catalog.PageResult{Page: n, Items: items, TotalPages: totalPages}
	}
	f.pages[list] = pages
}

func (f *fakeCatalog) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeCatalog) setPageErr(list catalog.ListKind, page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageErrs[pageKey(list, page)] = err
}

func (f *fakeCatalog) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeCatalog) cancelCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled[key]
}

func (f *fakeCatalog) enter(ctx context.Context, key string) error {
	f.mu.Lock()
	f.calls[key]++
	gate := f.gates[key]
	ignore := f.ignoreCancel
	f.mu.Unlock()

	if gate == nil {
		return ctx.Err()
	}
	if ignore {
		<-gate
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		f.mu.Lock()
		f.cancelled[key]++
		f.mu.Unlock()
		return catalog.NewFetchError(catalog.TransportFailure, "request cancelled", ctx.Err())
	}
}

func (f *fakeCatalog) FetchPage(ctx context.Context, list catalog.ListKind, page int) (*catalog.PageResult, error) {
	key := pageKey(list, page)
	if err := f.enter(ctx, key); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.pageErrs[key]; err != nil {
		return nil, err
	}
	if result, ok := f.pages[list][page]; ok {
		return result, nil
	}
	return &catalog.PageResult{Page: page, Items: []catalog.Item{}, TotalPages: len(f.pages[list])}, nil
}

func (f *fakeCatalog) FetchDetail(ctx context.Context, id int) (*catalog.RemoteDetail, error) {
	if err := f.enter(ctx, detailKey(id)); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.detailErr[id]; err != nil {
		return nil, err
	}
	if detail, ok := f.details[id]; ok {
		return detail, nil
	}
	return nil, catalog.StatusError(404, "The resource you requested could not be found.")
}

func (f *fakeCatalog) FetchGenres(ctx context.Context) ([]catalog.RawGenre, error) {
	if err := f.enter(ctx, "genres"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.genres, f.genresErr
}

func (f *fakeCatalog) FetchImage(ctx context.Context, ref string, size int, format catalog.ImageFormat) ([]byte, error) {
	if err := f.enter(ctx, imageKey(ref, size)); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.image == nil {
		return nil, catalog.StatusError(404, ref)
	}
	return f.image, nil
}

func strPtr(s string) *string {
	return &s
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 3))))
	return buf.Bytes()
}

// recorder captures every notification
type recorder struct {
	mu          sync.Mutex
	items       []catalog.Item
	lists       []catalog.ListKind
	genres      [][]catalog.Genre
	details     []catalog.Detail
	updated     []catalog.Item
	sessionErrs []error
	itemErrs    map[int][]error
}

func newRecorder() *recorder {
	return &recorder{itemErrs: make(map[int][]error)}
}

func (r *recorder) OnNewItems(list catalog.ListKind, items []catalog.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, list)
	r.items = append(r.items, items...)
}

func (r *recorder) OnGenresReady(genres []catalog.Genre) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.genres = append(r.genres, genres)
}

func (r *recorder) OnDetailReady(detail catalog.Detail) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.details = append(r.details, detail)
}

func (r *recorder) OnItemUpdated(item catalog.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, item)
}

func (r *recorder) OnSessionError(list catalog.ListKind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionErrs = append(r.sessionErrs, err)
}

func (r *recorder) OnItemError(id int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemErrs[id] = append(r.itemErrs[id], err)
}

func (r *recorder) itemCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *recorder) ids() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int, len(r.items))
	for i, item := range r.items {
		ids[i] = item.ID
	}
	return ids
}

func (r *recorder) detailCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.details)
}

func (r *recorder) updatedItems() []catalog.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]catalog.Item(nil), r.updated...)
}

func (r *recorder) sessionErrors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.sessionErrs...)
}

func (r *recorder) itemErrors(id int) []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.itemErrs[id]...)
}

func (r *recorder) genreLoads() [][]catalog.Genre {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]catalog.Genre(nil), r.genres...)
}

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// barrier waits until everything posted to the owner so far has run
func barrier(t *testing.T, s *Service) {
	t.Helper()

	done := make(chan struct{})
	require.NoError(t, s.post(func() { close(done) }))
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("owner goroutine did not drain its mailbox")
	}
}
