package browse

// DefaultPrefetchThreshold is the fraction of requested items that must be
// scrolled past before the next page is fetched
const DefaultPrefetchThreshold = 0.75

// LinearPosition flattens a page index and in-page index into a position
// across the whole list
func LinearPosition(pageIndex, index, pageSize int) int {
	return index + pageIndex*pageSize
}

// pageProgress is the part of the aggregator the tracker reads
type pageProgress interface {
	Locate(id int) (Locator, bool)
	PageSize() int
	HighestRequested() int
	TotalPages() int
}

// VisibilityTracker ratchets the furthest visible position of a session
// and decides when the next page is due
type VisibilityTracker struct {
	pages      pageProgress
	fraction   float64
	maxVisible int
}

// NewVisibilityTracker creates a tracker over pages. A fraction outside
// (0,1] falls back to DefaultPrefetchThreshold.
func NewVisibilityTracker(pages pageProgress, fraction float64) *VisibilityTracker {
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultPrefetchThreshold
	}
	return &VisibilityTracker{pages: pages, fraction: fraction}
}

// ItemBecameVisible records that a published item is shown and reports
// whether the next page should be requested
func (t *VisibilityTracker) ItemBecameVisible(id int) bool {
	loc, ok := t.pages.Locate(id)
	if !ok {
		return false
	}

	pageSize := t.pages.PageSize()
	if pos := LinearPosition(loc.PageIndex, loc.Index, pageSize); pos > t.maxVisible {
		t.maxVisible = pos
	}

	highest := t.pages.HighestRequested()
	threshold := t.fraction * float64(highest*pageSize)

	return float64(t.maxVisible) > threshold && highest < t.pages.TotalPages()
}

// MaxVisible returns the furthest position seen this session
func (t *VisibilityTracker) MaxVisible() int {
	return t.maxVisible
}

// Reset clears the cursor for a new session
func (t *VisibilityTracker) Reset() {
	t.maxVisible = 0
}
