package domain

import (
	"fmt"

	apperrors "github.com/utafrali/LibraryGo/pkg/errors"
)

// Entity names used in error messages and codes.
const (
	EntityAuthor = "Author"
	EntityBook   = "Book"
	EntityGenre  = "Genre"
	EntityReview = "Review"
)

// Error codes surfaced to API callers.
const (
	CodeAuthorNotFound     = "AUTHOR_NOT_FOUND"
	CodeBookNotFound       = "BOOK_NOT_FOUND"
	CodeGenreNotFound      = "GENRE_NOT_FOUND"
	CodeReviewNotFound     = "REVIEW_NOT_FOUND"
	CodeDuplicateISBN      = "DUPLICATE_ISBN"
	CodeDuplicateGenreName = "DUPLICATE_GENRE_NAME"
	CodeInvalidRating      = "INVALID_RATING"
	CodeBlankRequiredField = "BLANK_REQUIRED_FIELD"
)

// NotFoundError reports an id that does not resolve to an existing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Code() string {
	switch e.Entity {
	case EntityAuthor:
		return CodeAuthorNotFound
	case EntityBook:
		return CodeBookNotFound
	case EntityGenre:
		return CodeGenreNotFound
	default:
		return CodeReviewNotFound
	}
}

func (e *NotFoundError) Details() map[string]any {
	return map[string]any{"id": e.ID}
}

func (e *NotFoundError) Unwrap() error { return apperrors.ErrNotFound }

func AuthorNotFound(id int64) error { return &NotFoundError{Entity: EntityAuthor, ID: id} }
func BookNotFound(id int64) error   { return &NotFoundError{Entity: EntityBook, ID: id} }
func GenreNotFound(id int64) error  { return &NotFoundError{Entity: EntityGenre, ID: id} }
func ReviewNotFound(id int64) error { return &NotFoundError{Entity: EntityReview, ID: id} }

// DuplicateISBNError reports an ISBN already owned by another book.
type DuplicateISBNError struct {
	ISBN string
}

func (e *DuplicateISBNError) Error() string {
	return fmt.Sprintf("a book with ISBN %q already exists", e.ISBN)
}

func (e *DuplicateISBNError) Code() string { return CodeDuplicateISBN }

func (e *DuplicateISBNError) Details() map[string]any {
	return map[string]any{"isbn": e.ISBN}
}

func (e *DuplicateISBNError) Unwrap() error { return apperrors.ErrAlreadyExists }

// DuplicateGenreNameError reports a genre name that is already taken.
type DuplicateGenreNameError struct {
	Name string
}

func (e *DuplicateGenreNameError) Error() string {
	return fmt.Sprintf("a genre named %q already exists", e.Name)
}

func (e *DuplicateGenreNameError) Code() string { return CodeDuplicateGenreName }

func (e *DuplicateGenreNameError) Details() map[string]any {
	return map[string]any{"name": e.Name}
}

func (e *DuplicateGenreNameError) Unwrap() error { return apperrors.ErrAlreadyExists }

// InvalidRatingError reports a rating outside [MinRating, MaxRating].
type InvalidRatingError struct {
	Rating int
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("rating must be between %d and %d, got %d", MinRating, MaxRating, e.Rating)
}

func (e *InvalidRatingError) Code() string { return CodeInvalidRating }

func (e *InvalidRatingError) Details() map[string]any {
	return map[string]any{"rating": e.Rating}
}

func (e *InvalidRatingError) Unwrap() error { return apperrors.ErrInvalidInput }

// BlankFieldError reports a required string that is empty or whitespace.
type BlankFieldError struct {
	Entity string
	Field  string
}

func (e *BlankFieldError) Error() string {
	return fmt.Sprintf("%s %s must not be blank", e.Entity, e.Field)
}

func (e *BlankFieldError) Code() string { return CodeBlankRequiredField }

func (e *BlankFieldError) Details() map[string]any {
	return map[string]any{"entity": e.Entity, "field": e.Field}
}

func (e *BlankFieldError) Unwrap() error { return apperrors.ErrInvalidInput }
