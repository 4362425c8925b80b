package domain

import "time"

// DefaultLanguage is applied when a book is added without a language.
const DefaultLanguage = "English"

// Book belongs to one author, owns its reviews and is tagged with genres.
type Book struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	ISBN          *string    `json:"isbn,omitempty"`
	Description   *string    `json:"description,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	PageCount     *int       `json:"page_count,omitempty"`
	CoverImageURL *string    `json:"cover_image_url,omitempty"`
	Publisher     *string    `json:"publisher,omitempty"`
	Language      string     `json:"language"`
	AuthorID      int64      `json:"author_id"`

	genres  []Genre
	reviews []Review
}

// NewBook returns a book with the default language. authorID must be positive.
func NewBook(title string, authorID int64) (*Book, error) {
	if err := ValidateRequired(EntityBook, "title", title); err != nil {
		return nil, err
	}
	if authorID <= 0 {
		return nil, AuthorNotFound(authorID)
	}
	return &Book{Title: title, AuthorID: authorID, Language: DefaultLanguage}, nil
}

// Valid reports whether the title is non-blank and the author id positive.
func (b *Book) Valid() bool {
	return ValidateRequired(EntityBook, "title", b.Title) == nil && b.AuthorID > 0
}

// Genres returns a copy of the book's genres.
func (b *Book) Genres() []Genre { return cloneSlice(b.genres) }

// SetGenres replaces the whole genre set. Duplicate ids keep the first entry.
func (b *Book) SetGenres(genres []Genre) {
	b.genres = nil
	for _, g := range genres {
		b.AddGenre(g)
	}
}

// AddGenre tags the book with g unless a genre with the same id is present.
func (b *Book) AddGenre(g Genre) {
	for _, existing := range b.genres {
		if existing.ID == g.ID {
			return
		}
	}
	b.genres = append(b.genres, g)
}

// RemoveGenre untags the genre with the given id.
func (b *Book) RemoveGenre(id int64) bool {
	var ok bool
	b.genres, ok = removeByID(b.genres, id, func(x Genre) int64 { return x.ID })
	return ok
}

// GenreCount returns the number of genres the book is tagged with.
func (b *Book) GenreCount() int { return len(b.genres) }

// Reviews returns a copy of the book's reviews.
func (b *Book) Reviews() []Review { return cloneSlice(b.reviews) }

// AddReview attaches r to the book, replacing any review with the same id.
func (b *Book) AddReview(r Review) {
	r.BookID = b.ID
	b.reviews = upsertByID(b.reviews, r, func(x Review) int64 { return x.ID })
}

// RemoveReview detaches the review with the given id.
func (b *Book) RemoveReview(id int64) bool {
	var ok bool
	b.reviews, ok = removeByID(b.reviews, id, func(x Review) int64 { return x.ID })
	return ok
}

// ReviewCount returns the number of reviews attached.
func (b *Book) ReviewCount() int { return len(b.reviews) }

// AverageRating returns the mean rating of the attached reviews, or nil when
// there are none.
func (b *Book) AverageRating() *float64 { return AverageRating(b.reviews) }
