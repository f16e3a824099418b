package filter

import "github.com/s0up4200/marquee/catalog"

// GenreSet filters items by included and excluded genres. An item matches
// when it has none of the excluded genres and, if any genre is included,
// at least one of the included ones.
type GenreSet struct {
	include map[catalog.Genre]struct{}
	exclude map[catalog.Genre]struct{}
}

// NewGenreSet creates a set that matches every item
func NewGenreSet() *GenreSet {
	return &GenreSet{
		include: make(map[catalog.Genre]struct{}),
		exclude: make(map[catalog.Genre]struct{}),
	}
}

// Include requires one of the included genres
func (s *GenreSet) Include(genres ...catalog.Genre) *GenreSet {
	for _, g := range genres {
		delete(s.exclude, g)
		s.include[g] = struct{}{}
	}
	return s
}

// Exclude rejects items carrying any of genres
func (s *GenreSet) Exclude(genres ...catalog.Genre) *GenreSet {
	for _, g := range genres {
		delete(s.include, g)
		s.exclude[g] = struct{}{}
	}
	return s
}

// Toggle clears genre from the set if present, otherwise includes it
func (s *GenreSet) Toggle(genre catalog.Genre) {
	_, included := s.include[genre]
	_, excluded := s.exclude[genre]
	if included || excluded {
		delete(s.include, genre)
		delete(s.exclude, genre)
		return
	}
	s.include[genre] = struct{}{}
}

// Empty reports whether the set matches every item
func (s *GenreSet) Empty() bool {
	return len(s.include) == 0 && len(s.exclude) == 0
}

// Evaluate implements Filter
func (s *GenreSet) Evaluate(item catalog.Item) bool {
	matched := len(s.include) == 0
	for _, g := range item.Genres {
		if _, ok := s.exclude[g]; ok {
			return false
		}
		if _, ok := s.include[g]; ok {
			matched = true
		}
	}
	return matched
}
