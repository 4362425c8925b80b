package repository

import (
	"context"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/pkg/pagination"
)

// BookFilter defines filter criteria for listing books.
type BookFilter struct {
	Search   *string
	AuthorID *int64
	GenreID  *int64
}

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Authors() AuthorRepository
	Books() BookRepository
	Genres() GenreRepository
	Reviews() ReviewRepository

	// WithTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// AuthorRepository defines the interface for author persistence operations.
type AuthorRepository interface {
	// Create inserts a new author and assigns its ID.
	Create(ctx context.Context, author *domain.Author) error

	// GetByID retrieves an author, failing with AuthorNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Author, error)

	// List returns every author ordered by ID.
	List(ctx context.Context) ([]domain.Author, error)

	// ListByIDs returns the authors among ids that exist, in no particular order.
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Author, error)

	// Update overwrites the stored author.
	Update(ctx context.Context, author *domain.Author) error

	// Delete removes an author together with its books and their reviews.
	Delete(ctx context.Context, id int64) error
}

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book and assigns its ID.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book, failing with BookNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Book, error)

	// List returns one page of books matching filter along with the total count.
	List(ctx context.Context, filter BookFilter, page pagination.Params) ([]domain.Book, int, error)

	// ListByIDs returns the books among ids that exist, ordered by ID.
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Book, error)

	// ListByAuthorIDs returns every book written by one of the given authors.
	ListByAuthorIDs(ctx context.Context, authorIDs []int64) ([]domain.Book, error)

	// ListByGenreIDs returns the books tagged with each of the given genres,
	// keyed by genre ID.
	ListByGenreIDs(ctx context.Context, genreIDs []int64) (map[int64][]domain.Book, error)

	// ISBNTaken reports whether a book other than excludeID owns isbn.
	ISBNTaken(ctx context.Context, isbn string, excludeID int64) (bool, error)

	// Update overwrites the stored book.
	Update(ctx context.Context, book *domain.Book) error

	// SetGenres replaces the genre associations of a book.
	SetGenres(ctx context.Context, bookID int64, genreIDs []int64) error

	// Delete removes a book together with its reviews and genre associations.
	Delete(ctx context.Context, id int64) error
}

// GenreRepository defines the interface for genre persistence operations.
type GenreRepository interface {
	// Create inserts a new genre, failing with DuplicateGenreName.
	Create(ctx context.Context, genre *domain.Genre) error

	// GetByID retrieves a genre, failing with GenreNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Genre, error)

	// List returns every genre ordered by ID.
	List(ctx context.Context) ([]domain.Genre, error)

	// ListByIDs returns the genres among ids that exist.
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Genre, error)

	// ListByBookIDs returns the genres of each of the given books, keyed by
	// book ID.
	ListByBookIDs(ctx context.Context, bookIDs []int64) (map[int64][]domain.Genre, error)

	// Delete removes a genre and detaches it from every book.
	Delete(ctx context.Context, id int64) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review and assigns its ID.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review, failing with ReviewNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Review, error)

	// List returns every review, or only those of bookID when it is set.
	List(ctx context.Context, bookID *int64) ([]domain.Review, error)

	// ListByBookIDs returns every review of the given books.
	ListByBookIDs(ctx context.Context, bookIDs []int64) ([]domain.Review, error)

	// Update overwrites the stored review.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review.
	Delete(ctx context.Context, id int64) error
}
