package library

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var bucketMovies = []byte("movies")

// Store persists registered movies in a bbolt database
type Store struct {
	db     *bolt.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for created and modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens or creates the library database at path
func Open(path string, logger zerolog.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMovies)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize library: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	logger.Debug().Str("path", path).Msg("Opened library")
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func movieKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}

func getMovie(b *bolt.Bucket, id int) (*Movie, error) {
	data := b.Get(movieKey(id))
	if data == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotRegistered, id)
	}

	var m Movie
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode movie %d: %w", id, err)
	}
	return &m, nil
}

func putMovie(b *bolt.Bucket, m *Movie) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode movie %d: %w", m.ID, err)
	}
	return b.Put(movieKey(m.ID), data)
}

// update loads movie id, applies fn and stores the result in one transaction
func (s *Store) update(id int, fn func(m *Movie) error) (Movie, error) {
	var out Movie
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		m, err := getMovie(b, id)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		out = *m
		return putMovie(b, m)
	})
	return out, err
}

// Register adds a movie to the library as not seen. Registering a movie
// that is already present returns the stored record unchanged.
func (s *Store) Register(id int, title string) (Movie, error) {
	var out Movie
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		if existing, err := getMovie(b, id); err == nil {
			out = *existing
			return nil
		}

		m := &Movie{
			ID:       id,
			Title:    title,
			Category: CategoryNotSeen,
			Created:  s.now(),
		}
		out = *m
		return putMovie(b, m)
	})
	if err != nil {
		return Movie{}, err
	}

	s.logger.Debug().Int("id", id).Str("title", title).Msg("Registered movie")
	return out, nil
}

// Get returns a registered movie
func (s *Store) Get(id int) (Movie, error) {
	var out Movie
	err := s.db.View(func(tx *bolt.Tx) error {
		m, err := getMovie(tx.Bucket(bucketMovies), id)
		if err != nil {
			return err
		}
		out = *m
		return nil
	})
	return out, err
}

// Delete removes a movie and its notes
func (s *Store) Delete(id int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMovies)
		if b.Get(movieKey(id)) == nil {
			return fmt.Errorf("%w: %d", ErrNotRegistered, id)
		}
		return b.Delete(movieKey(id))
	})
}

// SetRating sets the rating of a movie
func (s *Store) SetRating(id, rating int) (Movie, error) {
	if rating < 0 || rating > MaxRating {
		return Movie{}, fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	return s.update(id, func(m *Movie) error {
		m.Rating = rating
		return nil
	})
}

// SetCategory moves a movie to another category
func (s *Store) SetCategory(id int, category Category) (Movie, error) {
	if _, err := ParseCategory(string(category)); err != nil {
		return Movie{}, err
	}
	return s.update(id, func(m *Movie) error {
		m.Category = category
		return nil
	})
}

// AddNote attaches a note to a movie
func (s *Store) AddNote(id int, text string) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrEmptyNote
	}

	noteID, err := uuid.NewV7()
	if err != nil {
		return Note{}, fmt.Errorf("failed to generate note id: %w", err)
	}

	note := Note{ID: noteID, Text: text, Created: s.now()}
	_, err = s.update(id, func(m *Movie) error {
		m.Notes = append(m.Notes, note)
		return nil
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// EditNote replaces the text of a note and stamps its modification time
func (s *Store) EditNote(id int, noteID uuid.UUID, text string) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, ErrEmptyNote
	}

	var note Note
	_, err := s.update(id, func(m *Movie) error {
		i := slices.IndexFunc(m.Notes, func(n Note) bool { return n.ID == noteID })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNoteNotFound, noteID)
		}
		modified := s.now()
		m.Notes[i].Text = text
		m.Notes[i].Modified = &modified
		note = m.Notes[i]
		return nil
	})
	return note, err
}

// DeleteNote removes a note from a movie
func (s *Store) DeleteNote(id int, noteID uuid.UUID) error {
	_, err := s.update(id, func(m *Movie) error {
		i := slices.IndexFunc(m.Notes, func(n Note) bool { return n.ID == noteID })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNoteNotFound, noteID)
		}
		m.Notes = slices.Delete(m.Notes, i, i+1)
		return nil
	})
	return err
}

// List returns registered movies, best rated first. When categories are
// given only movies in one of them are returned.
func (s *Store) List(categories ...Category) ([]Movie, error) {
	var movies []Movie
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMovies).ForEach(func(k, v []byte) error {
			var m Movie
			if err := json.Unmarshal(v, &m); err != nil {
				s.logger.Warn().Err(err).Str("key", string(k)).Msg("Skipping unreadable library record")
				return nil
			}
			if len(categories) == 0 || slices.Contains(categories, m.Category) {
				movies = append(movies, m)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}

	slices.SortStableFunc(movies, func(a, b Movie) int {
		if a.Rating != b.Rating {
			return b.Rating - a.Rating
		}
		return a.Created.Compare(b.Created)
	})
	return movies, nil
}
