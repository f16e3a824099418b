package browse

import (
	"context"
	"fmt"

	"github.com/s0up4200/marquee/catalog"
)

// DefaultMaxPages is the deepest page the remote list endpoints serve
const DefaultMaxPages = 500

type pageState int

const (
	pageFetching pageState = iota
	pageCompleted
	pagePublished
)

// page is one requested page of the current session
type page struct {
	number int
	state  pageState
	items  []catalog.Item
	cancel context.CancelFunc
}

// Locator places a published item by page index and raw in-page index
type Locator struct {
	PageIndex int
	Index     int
}

// PageAggregator collects list pages that may complete in any order and
// releases their items in page order, each identifier at most once per
// session. It is not safe for concurrent use; the service confines it to
// its owner goroutine.
type PageAggregator struct {
	maxPages   int
	generation uint64

	pages      []*page
	seen       map[int]struct{}
	known      map[int]catalog.Item
	locators   map[int]Locator
	published  []catalog.Item
	totalPages int
	pageSize   int

	failed bool
	err    error
}

// NewPageAggregator creates an aggregator bounded to maxPages pages
func NewPageAggregator(maxPages int) *PageAggregator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	a := &PageAggregator{maxPages: maxPages}
	a.clear()
	return a
}

func (a *PageAggregator) clear() {
	for _, p := range a.pages {
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
	}
	a.pages = nil
	a.seen = make(map[int]struct{})
	a.known = make(map[int]catalog.Item)
	a.locators = make(map[int]Locator)
	a.published = nil
	a.totalPages = 0
	a.pageSize = 0
}

// Reset discards the session, cancelling every outstanding fetch, and
// starts a new generation
func (a *PageAggregator) Reset() {
	a.clear()
	a.generation++
	a.failed = false
	a.err = nil
}

// Begin registers page n as fetching and returns the generation its
// completion must carry. cancel is invoked when the page is discarded.
func (a *PageAggregator) Begin(n int, cancel context.CancelFunc) (uint64, error) {
	if a.failed {
		if n != 1 {
			return 0, fmt.Errorf("%w: page %d requested before a new session", ErrSessionFailed, n)
		}
		a.Reset()
	}

	if n != len(a.pages)+1 {
		return 0, fmt.Errorf("%w: requested page %d after page %d", ErrNonContiguousPage, n, len(a.pages))
	}
	if n > a.maxPages || (a.totalPages > 0 && n > a.totalPages) {
		return 0, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, n, a.TotalPages())
	}

	a.pages = append(a.pages, &page{number: n, state: pageFetching, cancel: cancel})
	return a.generation, nil
}

// Complete stores the items of page n. It returns false when the
// completion belongs to a discarded session or an unknown page.
func (a *PageAggregator) Complete(gen uint64, n int, items []catalog.Item, totalPages int) bool {
	if gen != a.generation || a.failed {
		return false
	}
	if n < 1 || n > len(a.pages) {
		return false
	}

	p := a.pages[n-1]
	if p.state != pageFetching {
		return false
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	p.items = items
	p.state = pageCompleted

	a.totalPages = min(totalPages, a.maxPages)
	if a.pageSize == 0 && len(items) > 0 {
		a.pageSize = len(items)
	}
	for _, item := range items {
		if _, ok := a.known[item.ID]; !ok {
			a.known[item.ID] = item
		}
	}

	return true
}

// Fail discards all page state and enters the error state. It returns
// false when the failure belongs to a discarded session.
func (a *PageAggregator) Fail(gen uint64, err error) bool {
	if gen != a.generation || a.failed {
		return false
	}

	a.clear()
	a.generation++
	a.failed = true
	a.err = err
	return true
}

// PublishReady releases the items of every completed page that follows a
// contiguous run of published pages, skipping identifiers already seen.
func (a *PageAggregator) PublishReady() []catalog.Item {
	var batch []catalog.Item

	for _, p := range a.pages {
		if p.state == pagePublished {
			continue
		}
		if p.state != pageCompleted {
			break
		}

		for idx, item := range p.items {
			if _, dup := a.seen[item.ID]; dup {
				continue
			}
			a.seen[item.ID] = struct{}{}
			a.locators[item.ID] = Locator{PageIndex: p.number - 1, Index: idx}
			batch = append(batch, item)
		}
		p.state = pagePublished
	}

	a.published = append(a.published, batch...)
	return batch
}

// Locate returns the position of a published item
func (a *PageAggregator) Locate(id int) (Locator, bool) {
	loc, ok := a.locators[id]
	return loc, ok
}

// Find returns an item received on any completed page of the session
func (a *PageAggregator) Find(id int) (catalog.Item, bool) {
	item, ok := a.known[id]
	return item, ok
}

// Published returns the published sequence of the session
func (a *PageAggregator) Published() []catalog.Item {
	out := make([]catalog.Item, len(a.published))
	copy(out, a.published)
	return out
}

// HighestRequested returns the highest page number requested this session
func (a *PageAggregator) HighestRequested() int {
	return len(a.pages)
}

// TotalPages returns the page count reported by the remote list, bounded
// by the page cap. It is 0 until a page completes.
func (a *PageAggregator) TotalPages() int {
	return a.totalPages
}

// PageSize returns the item count of the first completed non-empty page
func (a *PageAggregator) PageSize() int {
	return a.pageSize
}

// Generation returns the current session generation
func (a *PageAggregator) Generation() uint64 {
	return a.generation
}

// Failed reports whether the session is in its error state
func (a *PageAggregator) Failed() bool {
	return a.failed
}

// Err returns the failure that put the session in its error state
func (a *PageAggregator) Err() error {
	return a.err
}

// PublishedPages returns how many pages have been released this session
func (a *PageAggregator) PublishedPages() int {
	n := 0
	for _, p := range a.pages {
		if p.state != pagePublished {
			break
		}
		n++
	}
	return n
}
