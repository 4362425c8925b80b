package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
	apperrors "github.com/utafrali/LibraryGo/pkg/errors"
	"github.com/utafrali/LibraryGo/pkg/pagination"
)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

type fixture struct {
	store  *Store
	author domain.Author
	book   domain.Book
	genre  domain.Genre
	review domain.Review
}

func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := NewStore()

	a := domain.Author{Name: "Frank Herbert"}
	require.NoError(t, s.Authors().Create(ctx, &a))
	g := domain.Genre{Name: "Science Fiction"}
	require.NoError(t, s.Genres().Create(ctx, &g))
	b := domain.Book{Title: "Dune", AuthorID: a.ID, ISBN: strPtr("978-0441172719"), Language: domain.DefaultLanguage}
	require.NoError(t, s.Books().Create(ctx, &b))
	require.NoError(t, s.Books().SetGenres(ctx, b.ID, []int64{g.ID}))
	r := domain.Review{BookID: b.ID, Rating: 5, ReviewerName: "Ann"}
	require.NoError(t, s.Reviews().Create(ctx, &r))

	return fixture{store: s, author: a, book: b, genre: g, review: r}
}

func TestStore_SequencesPerTable(t *testing.T) {
	f := seed(t)
	assert.Equal(t, int64(1), f.author.ID)
	assert.Equal(t, int64(1), f.book.ID)
	assert.Equal(t, int64(1), f.genre.ID)
	assert.Equal(t, int64(1), f.review.ID)
}

func TestBookRepository_ListByIDs(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	second := domain.Book{Title: "Dune Messiah", AuthorID: f.author.ID, Language: domain.DefaultLanguage}
	require.NoError(t, f.store.Books().Create(ctx, &second))

	books, err := f.store.Books().ListByIDs(ctx, []int64{second.ID, 404, f.book.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, f.book.ID, books[0].ID)
	assert.Equal(t, "Dune Messiah", books[1].Title)
}

func TestStore_DeleteAuthorCascades(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	require.NoError(t, f.store.Authors().Delete(ctx, f.author.ID))

	_, err := f.store.Books().GetByID(ctx, f.book.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.store.Reviews().GetByID(ctx, f.review.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	byGenre, err := f.store.Books().ListByGenreIDs(ctx, []int64{f.genre.ID})
	require.NoError(t, err)
	assert.Empty(t, byGenre[f.genre.ID])

	_, err = f.store.Genres().GetByID(ctx, f.genre.ID)
	assert.NoError(t, err, "genres are not owned by books")
}

func TestStore_DeleteGenreDetaches(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	require.NoError(t, f.store.Genres().Delete(ctx, f.genre.ID))

	byBook, err := f.store.Genres().ListByBookIDs(ctx, []int64{f.book.ID})
	require.NoError(t, err)
	assert.Empty(t, byBook[f.book.ID])

	_, err = f.store.Books().GetByID(ctx, f.book.ID)
	assert.NoError(t, err)

	assert.Equal(t, domain.GenreNotFound(f.genre.ID), f.store.Genres().Delete(ctx, f.genre.ID))
}

func TestStore_UniqueConstraints(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	dup := domain.Book{Title: "Dune (copy)", AuthorID: f.author.ID, ISBN: strPtr("978-0441172719")}
	var isbnErr *domain.DuplicateISBNError
	require.ErrorAs(t, f.store.Books().Create(ctx, &dup), &isbnErr)

	taken, err := f.store.Books().ISBNTaken(ctx, "978-0441172719", f.book.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a book does not collide with itself")

	g := domain.Genre{Name: "Science Fiction"}
	var nameErr *domain.DuplicateGenreNameError
	require.ErrorAs(t, f.store.Genres().Create(ctx, &g), &nameErr)
}

func TestStore_ForeignKeys(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	b := domain.Book{Title: "Orphan", AuthorID: 9999}
	assert.Equal(t, domain.AuthorNotFound(9999), s.Books().Create(ctx, &b))

	r := domain.Review{BookID: 9999, Rating: 3, ReviewerName: "Bo"}
	assert.Equal(t, domain.BookNotFound(9999), s.Reviews().Create(ctx, &r))
}

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	f := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.store.WithTx(ctx, func(tx repository.Store) error {
		a := domain.Author{Name: "Ghost"}
		require.NoError(t, tx.Authors().Create(ctx, &a))
		require.NoError(t, tx.Books().Delete(ctx, f.book.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	authors, err := f.store.Authors().List(ctx)
	require.NoError(t, err)
	assert.Len(t, authors, 1)
	_, err = f.store.Books().GetByID(ctx, f.book.ID)
	assert.NoError(t, err)
	reviews, err := f.store.Reviews().List(ctx, int64Ptr(f.book.ID))
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestStore_WithTx_CancelledBeforeCommit(t *testing.T) {
	f := seed(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := f.store.WithTx(ctx, func(tx repository.Store) error {
		a := domain.Author{Name: "Ghost"}
		if err := tx.Authors().Create(ctx, &a); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	authors, err := f.store.Authors().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, authors, 1)
}

func TestStore_WithTx_NestedJoins(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx repository.Store) error {
		return tx.WithTx(ctx, func(inner repository.Store) error {
			a := domain.Author{Name: "Inner"}
			return inner.Authors().Create(ctx, &a)
		})
	})
	require.NoError(t, err)

	authors, err := s.Authors().List(ctx)
	require.NoError(t, err)
	assert.Len(t, authors, 1)
}

func TestStore_ConcurrentTransactionsSerialize(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithTx(ctx, func(tx repository.Store) error {
				a := domain.Author{Name: "Writer"}
				return tx.Authors().Create(ctx, &a)
			})
		}()
	}
	wg.Wait()

	authors, err := s.Authors().List(ctx)
	require.NoError(t, err)
	assert.Len(t, authors, 20)
	assert.Equal(t, int64(20), authors[19].ID)
}

func TestBookRepository_ListFiltersAndPages(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	other := domain.Author{Name: "Ursula K. Le Guin"}
	require.NoError(t, f.store.Authors().Create(ctx, &other))
	for _, title := range []string{"The Dispossessed", "The Lathe of Heaven", "A Wizard of Earthsea"} {
		b := domain.Book{Title: title, AuthorID: other.ID, Description: strPtr("by Le Guin")}
		require.NoError(t, f.store.Books().Create(ctx, &b))
	}

	perPage := 2
	books, total, err := f.store.Books().List(ctx, repository.BookFilter{}, pagination.New(nil, &perPage))
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)

	page := 2
	books, _, err = f.store.Books().List(ctx, repository.BookFilter{}, pagination.New(&page, &perPage))
	require.NoError(t, err)
	assert.Equal(t, "The Lathe of Heaven", books[0].Title)

	books, total, err = f.store.Books().List(ctx, repository.BookFilter{Search: strPtr("THE")}, pagination.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, books, 2)

	_, total, err = f.store.Books().List(ctx, repository.BookFilter{Search: strPtr("le guin")}, pagination.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 3, total, "description matches")

	books, total, err = f.store.Books().List(ctx, repository.BookFilter{GenreID: int64Ptr(f.genre.ID)}, pagination.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Dune", books[0].Title)

	page = 10
	books, total, err = f.store.Books().List(ctx, repository.BookFilter{AuthorID: int64Ptr(other.ID)}, pagination.New(&page, nil))
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NotNil(t, books)
	assert.Equal(t, 3, total)
}

func TestStore_RowsCarryNoAssociations(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	b, err := f.store.Books().GetByID(ctx, f.book.ID)
	require.NoError(t, err)
	b.AddReview(domain.Review{ID: 50, Rating: 1})
	require.NoError(t, f.store.Books().Update(ctx, b))

	again, err := f.store.Books().GetByID(ctx, f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ReviewCount())
}

func TestStore_CancelledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Authors().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	a := domain.Author{Name: "Late"}
	assert.ErrorIs(t, s.Authors().Create(ctx, &a), context.Canceled)
}
