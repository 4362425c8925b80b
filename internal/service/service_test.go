package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
	"github.com/utafrali/LibraryGo/internal/repository/memory"
	apperrors "github.com/utafrali/LibraryGo/pkg/errors"
	"github.com/utafrali/LibraryGo/pkg/pagination"
)

// catalog builds a small catalog on an in-memory store.
type catalog struct {
	svc    *Service
	author *domain.Author
	scifi  *domain.Genre
	book   *domain.Book
}

func newCatalog(t *testing.T) catalog {
	t.Helper()
	ctx := context.Background()
	svc := newTestService(memory.NewStore(), nil)

	author, err := svc.AddAuthor(ctx, AddAuthorInput{Name: "Frank Herbert"})
	require.NoError(t, err)
	scifi, err := svc.AddGenre(ctx, AddGenreInput{Name: "Science Fiction"})
	require.NoError(t, err)
	book, err := svc.AddBook(ctx, AddBookInput{
		Title:    "Dune",
		ISBN:     strPtr("978-0441172719"),
		AuthorID: author.ID,
		GenreIDs: []int64{scifi.ID},
	})
	require.NoError(t, err)
	for _, rating := range []int{5, 4, 4} {
		_, err := svc.AddReview(ctx, AddReviewInput{BookID: book.ID, Rating: rating, ReviewerName: "Reader"})
		require.NoError(t, err)
	}
	return catalog{svc: svc, author: author, scifi: scifi, book: book}
}

func TestCatalog_AggregatesFromStore(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	reviews, err := c.svc.ReviewsByBookIDs(ctx, []int64{c.book.ID})
	require.NoError(t, err)
	assert.Len(t, reviews[c.book.ID], 3)
	assert.InDelta(t, 4.33, *domain.AverageRating(reviews[c.book.ID]), 1e-9)

	books, err := c.svc.BooksByGenreIDs(ctx, []int64{c.scifi.ID})
	require.NoError(t, err)
	assert.Len(t, books[c.scifi.ID], 1)
}

func TestCatalog_DeleteAuthorCascades(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.svc.DeleteAuthor(ctx, c.author.ID))

	_, err := c.svc.Book(ctx, c.book.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	reviews, err := c.svc.Reviews(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	genres, err := c.svc.Genres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 1)
}

func TestCatalog_DeleteBookCascadesReviewsAndDetachesGenres(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.svc.DeleteBook(ctx, c.book.ID))

	reviews, err := c.svc.Reviews(ctx, int64Ptr(c.book.ID))
	require.NoError(t, err)
	assert.Empty(t, reviews)

	books, err := c.svc.BooksByGenreIDs(ctx, []int64{c.scifi.ID})
	require.NoError(t, err)
	assert.Empty(t, books[c.scifi.ID])

	_, err = c.svc.Genre(ctx, c.scifi.ID)
	assert.NoError(t, err)
	_, err = c.svc.Author(ctx, c.author.ID)
	assert.NoError(t, err)
}

func TestCatalog_FailedMutationWritesNothing(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.svc.AddBook(ctx, AddBookInput{
		Title:    "Children of Dune",
		AuthorID: c.author.ID,
		GenreIDs: []int64{c.scifi.ID, 4040},
	})
	assert.Equal(t, domain.CodeGenreNotFound, apperrors.CodeOf(err))

	page, err := c.svc.Books(ctx, repository.BookFilter{}, pagination.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)

	ids := []int64{4040}
	_, err = c.svc.UpdateBook(ctx, UpdateBookInput{ID: c.book.ID, Title: strPtr("Dune (rev.)"), GenreIDs: &ids})
	require.Error(t, err)

	book, err := c.svc.Book(ctx, c.book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	genres, err := c.svc.GenresByBookIDs(ctx, []int64{c.book.ID})
	require.NoError(t, err)
	assert.Len(t, genres[c.book.ID], 1)
}

func TestCatalog_DuplicatesRejected(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	_, err := c.svc.AddBook(ctx, AddBookInput{Title: "Pirate Dune", ISBN: strPtr("978-0441172719"), AuthorID: c.author.ID})
	assert.Equal(t, domain.CodeDuplicateISBN, apperrors.CodeOf(err))

	_, err = c.svc.AddGenre(ctx, AddGenreInput{Name: "Science Fiction"})
	assert.Equal(t, domain.CodeDuplicateGenreName, apperrors.CodeOf(err))

	other, err := c.svc.AddBook(ctx, AddBookInput{Title: "Dune Messiah", AuthorID: c.author.ID})
	require.NoError(t, err)
	_, err = c.svc.UpdateBook(ctx, UpdateBookInput{ID: other.ID, ISBN: strPtr("978-0441172719")})
	assert.Equal(t, domain.CodeDuplicateISBN, apperrors.CodeOf(err))
}

func TestCatalog_DeleteGenreTwice(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.svc.DeleteGenre(ctx, c.scifi.ID))
	assert.Equal(t, domain.CodeGenreNotFound, apperrors.CodeOf(c.svc.DeleteGenre(ctx, c.scifi.ID)))

	book, err := c.svc.Book(ctx, c.book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
}

func TestCatalog_BooksPaging(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	for _, title := range []string{"Dune Messiah", "Children of Dune"} {
		_, err := c.svc.AddBook(ctx, AddBookInput{Title: title, AuthorID: c.author.ID})
		require.NoError(t, err)
	}

	perPage := 2
	page, err := c.svc.Books(ctx, repository.BookFilter{Search: strPtr("dune")}, pagination.New(nil, &perPage))
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.Len(t, page.Items, 2)
}
