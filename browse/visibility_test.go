package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeProgress struct {
	locators map[int]Locator
	pageSize int
	highest  int
	total    int
}

func (f *fakeProgress) Locate(id int) (Locator, bool) {
	loc, ok := f.locators[id]
	return loc, ok
}

func (f *fakeProgress) PageSize() int         { return f.pageSize }
func (f *fakeProgress) HighestRequested() int { return f.highest }
func (f *fakeProgress) TotalPages() int       { return f.total }

func TestLinearPosition(t *testing.T) {
	tests := []struct {
		pageIndex, index, pageSize, expected int
	}{
		{0, 0, 20, 0},
		{0, 19, 20, 19},
		{1, 0, 20, 20},
		{2, 5, 20, 45},
		{3, 7, 0, 7},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LinearPosition(tt.pageIndex, tt.index, tt.pageSize))
	}
}

func TestItemBecameVisibleThreshold(t *testing.T) {
	progress := &fakeProgress{
		locators: map[int]Locator{
			14: {PageIndex: 0, Index: 14},
			15: {PageIndex: 0, Index: 15},
			16: {PageIndex: 0, Index: 16},
		},
		pageSize: 20,
		highest:  1,
		total:    10,
	}

	tests := []struct {
		name string
		id   int
		want bool
	}{
		{"below threshold", 14, false},
		{"at threshold", 15, false},
		{"past threshold", 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewVisibilityTracker(progress, 0.75)
			assert.Equal(t, tt.want, tracker.ItemBecameVisible(tt.id))
		})
	}
}

func TestItemBecameVisibleMonotonic(t *testing.T) {
	progress := &fakeProgress{
		locators: map[int]Locator{},
		pageSize: 20,
		highest:  3,
		total:    10,
	}
	for pos := 0; pos < 60; pos++ {
		progress.locators[pos] = Locator{PageIndex: pos / 20, Index: pos % 20}
	}

	tracker := NewVisibilityTracker(progress, 0.75)
	for pos := 59; pos >= 0; pos -= 7 {
		tracker.ItemBecameVisible(pos)
		assert.Equal(t, 59, tracker.MaxVisible())
	}

	tracker.Reset()
	assert.Equal(t, 0, tracker.MaxVisible())
}

func TestItemBecameVisibleStopsAtLastPage(t *testing.T) {
	progress := &fakeProgress{
		locators: map[int]Locator{1: {PageIndex: 1, Index: 19}},
		pageSize: 20,
		highest:  2,
		total:    2,
	}

	tracker := NewVisibilityTracker(progress, 0.75)
	assert.False(t, tracker.ItemBecameVisible(1))
	assert.Equal(t, 39, tracker.MaxVisible())
}

func TestItemBecameVisibleUnknownItem(t *testing.T) {
	progress := &fakeProgress{locators: map[int]Locator{}, pageSize: 20, highest: 1, total: 5}

	tracker := NewVisibilityTracker(progress, 0.75)
	assert.False(t, tracker.ItemBecameVisible(404))
	assert.Equal(t, 0, tracker.MaxVisible())
}

func TestItemBecameVisibleWithAggregator(t *testing.T) {
	a := NewPageAggregator(0)
	gen := beginPages(t, a, 1)

	ids := make([]int, 20)
	for i := range ids {
		ids[i] = 100 + i
	}
	a.Complete(gen, 1, itemsWithIDs(ids...), 3)
	a.PublishReady()

	tracker := NewVisibilityTracker(a, 0)
	assert.False(t, tracker.ItemBecameVisible(114))
	assert.True(t, tracker.ItemBecameVisible(116))

	_, err := a.Begin(2, noopCancel)
	assert.NoError(t, err)
	assert.False(t, tracker.ItemBecameVisible(119), "threshold moves with the highest requested page")
}
