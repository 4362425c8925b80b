package domain

// Genre classifies books. Names are unique.
type Genre struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`

	books []Book
}

// NewGenre returns a genre with the given name.
func NewGenre(name string) (*Genre, error) {
	if err := ValidateRequired(EntityGenre, "name", name); err != nil {
		return nil, err
	}
	return &Genre{Name: name}, nil
}

// Books returns a copy of the books tagged with this genre.
func (g *Genre) Books() []Book { return cloneSlice(g.books) }

// AddBook tags b with this genre unless already present.
func (g *Genre) AddBook(b Book) {
	g.books = upsertByID(g.books, b, func(x Book) int64 { return x.ID })
}

// RemoveBook untags the book with the given id.
func (g *Genre) RemoveBook(id int64) bool {
	var ok bool
	g.books, ok = removeByID(g.books, id, func(x Book) int64 { return x.ID })
	return ok
}

// BookCount returns the number of books tagged with this genre.
func (g *Genre) BookCount() int { return len(g.books) }
