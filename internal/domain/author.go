package domain

import "time"

// Author writes books. Deleting an author deletes their books.
type Author struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Biography   *string    `json:"biography,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`
	ImageURL    *string    `json:"image_url,omitempty"`

	books []Book
}

// NewAuthor returns an author with the given name.
func NewAuthor(name string) (*Author, error) {
	if err := ValidateRequired(EntityAuthor, "name", name); err != nil {
		return nil, err
	}
	return &Author{Name: name}, nil
}

// Books returns a copy of the author's books.
func (a *Author) Books() []Book {
	return cloneSlice(a.books)
}

// AddBook attaches b to the author, replacing any book with the same id.
func (a *Author) AddBook(b Book) {
	b.AuthorID = a.ID
	a.books = upsertByID(a.books, b, func(x Book) int64 { return x.ID })
}

// RemoveBook detaches the book with the given id and reports whether it was
// present.
func (a *Author) RemoveBook(id int64) bool {
	var ok bool
	a.books, ok = removeByID(a.books, id, func(x Book) int64 { return x.ID })
	return ok
}

// BookCount returns the number of books currently attached.
func (a *Author) BookCount() int { return len(a.books) }
