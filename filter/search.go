package filter

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/s0up4200/marquee/catalog"
)

// titleIndex implements fuzzy.Source over item titles
type titleIndex struct {
	items       []catalog.Item
	lowerTitles []string
}

func newTitleIndex(items []catalog.Item) *titleIndex {
	idx := &titleIndex{
		items:       items,
		lowerTitles: make([]string, len(items)),
	}
	for i, item := range items {
		idx.lowerTitles[i] = strings.ToLower(item.Title)
	}
	return idx
}

func (idx *titleIndex) String(i int) string { return idx.lowerTitles[i] }

func (idx *titleIndex) Len() int { return len(idx.items) }

// Search ranks items by fuzzy title match, best first. An empty query
// returns the items unchanged.
func Search(items []catalog.Item, query string) []catalog.Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return items
	}

	idx := newTitleIndex(items)
	matches := fuzzy.FindFrom(strings.ToLower(query), idx)

	results := make([]catalog.Item, len(matches))
	for i, m := range matches {
		results[i] = idx.items[m.Index]
	}
	return results
}

// Query is a Filter keeping items whose title fuzzily contains the text
type Query string

// Evaluate implements Filter
func (q Query) Evaluate(item catalog.Item) bool {
	text := strings.TrimSpace(string(q))
	if text == "" {
		return true
	}
	return len(fuzzy.Find(strings.ToLower(text), []string{strings.ToLower(item.Title)})) > 0
}
