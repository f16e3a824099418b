package library

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups registered movies
type Category string

const (
	CategorySeen     Category = "seen"
	CategoryNotSeen  Category = "not-seen"
	CategoryArchived Category = "archived"
)

// Categories returns every category in display order
func Categories() []Category {
	return []Category{CategorySeen, CategoryNotSeen, CategoryArchived}
}

// ParseCategory parses a category name
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategorySeen, CategoryNotSeen, CategoryArchived:
		return c, nil
	case "notseen", "not_seen", "unseen":
		return CategoryNotSeen, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// MaxRating is the highest rating a movie can carry
const MaxRating = 99

// Movie is a registered movie, keyed by its catalog identifier
type Movie struct {
	ID       int       `json:"id"`
	Title    string    `json:"title,omitempty"`
	Rating   int       `json:"rating"`
	Category Category  `json:"category"`
	Created  time.Time `json:"created"`
	Notes    []Note    `json:"notes,omitempty"`
}

// Note is a free-text note attached to a registered movie
type Note struct {
	ID       uuid.UUID  `json:"id"`
	Text     string     `json:"text"`
	Created  time.Time  `json:"created"`
	Modified *time.Time `json:"modified,omitempty"`
}
