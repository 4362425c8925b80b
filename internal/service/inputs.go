package service

import "time"

// AddAuthorInput holds the fields of a new author.
type AddAuthorInput struct {
	Name        string
	Biography   *string
	DateOfBirth *time.Time
	Nationality *string
	ImageURL    *string
}

// UpdateAuthorInput holds a partial author update. Nil fields are left as is.
type UpdateAuthorInput struct {
	ID          int64
	Name        *string
	Biography   *string
	DateOfBirth *time.Time
	Nationality *string
	ImageURL    *string
}

// AddBookInput holds the fields of a new book.
type AddBookInput struct {
	Title         string
	ISBN          *string
	Description   *string
	PublishedDate *time.Time
	PageCount     *int
	CoverImageURL *string
	Publisher     *string
	Language      *string
	AuthorID      int64
	GenreIDs      []int64
}

// UpdateBookInput holds a partial book update. Nil fields are left as is; a
// non-nil GenreIDs replaces the whole genre set, even when empty.
type UpdateBookInput struct {
	ID            int64
	Title         *string
	ISBN          *string
	Description   *string
	PublishedDate *time.Time
	PageCount     *int
	CoverImageURL *string
	Publisher     *string
	Language      *string
	AuthorID      *int64
	GenreIDs      *[]int64
}

// AddGenreInput holds the fields of a new genre.
type AddGenreInput struct {
	Name        string
	Description *string
}

// AddReviewInput holds the fields of a new review.
type AddReviewInput struct {
	BookID        int64
	Rating        int
	Comment       *string
	ReviewerName  string
	ReviewerEmail *string
}

// UpdateReviewInput holds a partial review update.
type UpdateReviewInput struct {
	ID      int64
	Rating  *int
	Comment *string
}
