// Package memory is an in-process repository.Store. It enforces the same
// foreign keys, cascades and unique constraints as the PostgreSQL schema.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
)

// Table names double as sequence keys.
const (
	tableAuthors = "authors"
	tableBooks   = "books"
	tableGenres  = "genres"
	tableReviews = "reviews"
)

type tables struct {
	seq        map[string]int64
	authors    map[int64]domain.Author
	books      map[int64]domain.Book
	genres     map[int64]domain.Genre
	reviews    map[int64]domain.Review
	bookGenres map[int64]map[int64]struct{}
}

func newTables() *tables {
	return &tables{
		seq:        make(map[string]int64),
		authors:    make(map[int64]domain.Author),
		books:      make(map[int64]domain.Book),
		genres:     make(map[int64]domain.Genre),
		reviews:    make(map[int64]domain.Review),
		bookGenres: make(map[int64]map[int64]struct{}),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		seq:        maps.Clone(t.seq),
		authors:    maps.Clone(t.authors),
		books:      maps.Clone(t.books),
		genres:     maps.Clone(t.genres),
		reviews:    maps.Clone(t.reviews),
		bookGenres: make(map[int64]map[int64]struct{}, len(t.bookGenres)),
	}
	for bookID, set := range t.bookGenres {
		c.bookGenres[bookID] = maps.Clone(set)
	}
	return c
}

// nextID advances the sequence of table, like a BIGSERIAL column.
func (t *tables) nextID(table string) int64 {
	t.seq[table]++
	return t.seq[table]
}

type shared struct {
	mu   sync.RWMutex
	data *tables
}

// Store implements repository.Store in memory. The zero value is not usable;
// call NewStore.
type Store struct {
	shared *shared
	tx     *tables
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{shared: &shared{data: newTables()}}
}

func (s *Store) Authors() repository.AuthorRepository { return &AuthorRepository{s: s} }
func (s *Store) Books() repository.BookRepository     { return &BookRepository{s: s} }
func (s *Store) Genres() repository.GenreRepository   { return &GenreRepository{s: s} }
func (s *Store) Reviews() repository.ReviewRepository { return &ReviewRepository{s: s} }

// WithTx runs fn against a private copy of the data and publishes the copy
// when fn succeeds. Transactions are serialized. Nested calls join the
// enclosing transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()

	work := s.shared.data.clone()
	if err := fn(&Store{shared: s.shared, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.shared.data = work
	return nil
}

func (s *Store) view(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	s.shared.mu.RLock()
	defer s.shared.mu.RUnlock()
	return fn(s.shared.data)
}

func (s *Store) update(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	s.shared.mu.Lock()
	defer s.shared.mu.Unlock()
	return fn(s.shared.data)
}

// sortedValues returns the values of m ordered by key.
func sortedValues[V any](m map[int64]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func sortByID[T any](s []T, id func(T) int64) {
	slices.SortFunc(s, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
