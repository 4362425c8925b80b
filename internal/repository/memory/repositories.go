package memory

import (
	"context"
	"strings"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
	"github.com/utafrali/LibraryGo/pkg/pagination"
)

// Stored rows carry columns only, never loaded associations.

func authorRow(a *domain.Author) domain.Author {
	return domain.Author{
		ID:          a.ID,
		Name:        a.Name,
		Biography:   a.Biography,
		DateOfBirth: a.DateOfBirth,
		Nationality: a.Nationality,
		ImageURL:    a.ImageURL,
	}
}

func bookRow(b *domain.Book) domain.Book {
	return domain.Book{
		ID:            b.ID,
		Title:         b.Title,
		ISBN:          b.ISBN,
		Description:   b.Description,
		PublishedDate: b.PublishedDate,
		PageCount:     b.PageCount,
		CoverImageURL: b.CoverImageURL,
		Publisher:     b.Publisher,
		Language:      b.Language,
		AuthorID:      b.AuthorID,
	}
}

func genreRow(g *domain.Genre) domain.Genre {
	return domain.Genre{ID: g.ID, Name: g.Name, Description: g.Description}
}

// ============================================================================
// Authors
// ============================================================================

// AuthorRepository implements repository.AuthorRepository.
type AuthorRepository struct{ s *Store }

func (r *AuthorRepository) Create(ctx context.Context, a *domain.Author) error {
	return r.s.update(ctx, func(t *tables) error {
		a.ID = t.nextID(tableAuthors)
		t.authors[a.ID] = authorRow(a)
		return nil
	})
}

func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	var out *domain.Author
	err := r.s.view(ctx, func(t *tables) error {
		a, ok := t.authors[id]
		if !ok {
			return domain.AuthorNotFound(id)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *AuthorRepository) List(ctx context.Context) ([]domain.Author, error) {
	var out []domain.Author
	err := r.s.view(ctx, func(t *tables) error {
		out = sortedValues(t.authors)
		return nil
	})
	return out, err
}

func (r *AuthorRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Author, error) {
	out := []domain.Author{}
	err := r.s.view(ctx, func(t *tables) error {
		for id := range idSet(ids) {
			if a, ok := t.authors[id]; ok {
				out = append(out, a)
			}
		}
		return nil
	})
	sortByID(out, func(a domain.Author) int64 { return a.ID })
	return out, err
}

func (r *AuthorRepository) Update(ctx context.Context, a *domain.Author) error {
	return r.s.update(ctx, func(t *tables) error {
		if _, ok := t.authors[a.ID]; !ok {
			return domain.AuthorNotFound(a.ID)
		}
		t.authors[a.ID] = authorRow(a)
		return nil
	})
}

func (r *AuthorRepository) Delete(ctx context.Context, id int64) error {
	return r.s.update(ctx, func(t *tables) error {
		if _, ok := t.authors[id]; !ok {
			return domain.AuthorNotFound(id)
		}
		delete(t.authors, id)
		for bookID, b := range t.books {
			if b.AuthorID == id {
				deleteBook(t, bookID)
			}
		}
		return nil
	})
}

// ============================================================================
// Books
// ============================================================================

// BookRepository implements repository.BookRepository.
type BookRepository struct{ s *Store }

func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	return r.s.update(ctx, func(t *tables) error {
		if err := checkBook(t, b); err != nil {
			return err
		}
		b.ID = t.nextID(tableBooks)
		t.books[b.ID] = bookRow(b)
		return nil
	})
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	var out *domain.Book
	err := r.s.view(ctx, func(t *tables) error {
		b, ok := t.books[id]
		if !ok {
			return domain.BookNotFound(id)
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter, page pagination.Params) ([]domain.Book, int, error) {
	var (
		out   = []domain.Book{}
		total int
	)
	err := r.s.view(ctx, func(t *tables) error {
		var search string
		if filter.Search != nil {
			search = strings.ToLower(strings.TrimSpace(*filter.Search))
		}
		var matched []domain.Book
		for _, b := range sortedValues(t.books) {
			if filter.AuthorID != nil && b.AuthorID != *filter.AuthorID {
				continue
			}
			if filter.GenreID != nil {
				if _, ok := t.bookGenres[b.ID][*filter.GenreID]; !ok {
					continue
				}
			}
			if search != "" && !bookMatches(b, search) {
				continue
			}
			matched = append(matched, b)
		}
		total = len(matched)
		if page.Offset < total {
			end := min(page.Offset+page.PerPage, total)
			out = append(out, matched[page.Offset:end]...)
		}
		return nil
	})
	return out, total, err
}

func bookMatches(b domain.Book, search string) bool {
	if strings.Contains(strings.ToLower(b.Title), search) {
		return true
	}
	return b.Description != nil && strings.Contains(strings.ToLower(*b.Description), search)
}

func (r *BookRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	out := []domain.Book{}
	err := r.s.view(ctx, func(t *tables) error {
		for id := range idSet(ids) {
			if b, ok := t.books[id]; ok {
				out = append(out, b)
			}
		}
		return nil
	})
	sortByID(out, func(b domain.Book) int64 { return b.ID })
	return out, err
}

func (r *BookRepository) ListByAuthorIDs(ctx context.Context, authorIDs []int64) ([]domain.Book, error) {
	out := []domain.Book{}
	err := r.s.view(ctx, func(t *tables) error {
		want := idSet(authorIDs)
		for _, b := range sortedValues(t.books) {
			if _, ok := want[b.AuthorID]; ok {
				out = append(out, b)
			}
		}
		return nil
	})
	return out, err
}

func (r *BookRepository) ListByGenreIDs(ctx context.Context, genreIDs []int64) (map[int64][]domain.Book, error) {
	out := make(map[int64][]domain.Book, len(genreIDs))
	err := r.s.view(ctx, func(t *tables) error {
		want := idSet(genreIDs)
		for _, b := range sortedValues(t.books) {
			for genreID := range t.bookGenres[b.ID] {
				if _, ok := want[genreID]; ok {
					out[genreID] = append(out[genreID], b)
				}
			}
		}
		return nil
	})
	return out, err
}

func (r *BookRepository) ISBNTaken(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	var taken bool
	err := r.s.view(ctx, func(t *tables) error {
		taken = isbnOwner(t, isbn, excludeID)
		return nil
	})
	return taken, err
}

func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	return r.s.update(ctx, func(t *tables) error {
		if _, ok := t.books[b.ID]; !ok {
			return domain.BookNotFound(b.ID)
		}
		if err := checkBook(t, b); err != nil {
			return err
		}
		t.books[b.ID] = bookRow(b)
		return nil
	})
}

func (r *BookRepository) SetGenres(ctx context.Context, bookID int64, genreIDs []int64) error {
	return r.s.update(ctx, func(t *tables) error {
		if _, ok := t.books[bookID]; !ok {
			return domain.BookNotFound(bookID)
		}
		for _, id := range genreIDs {
			if _, ok := t.genres[id]; !ok {
				return domain.GenreNotFound(id)
			}
		}
		if len(genreIDs) == 0 {
			delete(t.bookGenres, bookID)
			return nil
		}
		t.bookGenres[bookID] = idSet(genreIDs)
		return nil
	})
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	return r.s.update(ctx, func(t *tables) error {
		if _, ok := t.books[id]; !ok {
			return domain.BookNotFound(id)
		}
		deleteBook(t, id)
		return nil
	})
}

// checkBook enforces the author foreign key and the ISBN unique constraint.
func checkBook(t *tables, b *domain.Book) error {
	if _, ok := t.authors[b.AuthorID]; !ok {
		return domain.AuthorNotFound(b.AuthorID)
	}
	if b.ISBN != nil && isbnOwner(t, *b.ISBN, b.ID) {
		return &domain.DuplicateISBNError{ISBN: *b.ISBN}
	}
	return nil
}

func isbnOwner(t *tables, isbn string, excludeID int64) bool {
	for id, b := range t.books {
		if id != excludeID && b.ISBN != nil && *b.ISBN == isbn {
			return true
		}
	}
	return false
}

func deleteBook(t *tables, id int64) {
	delete(t.books, id)
	delete(t.bookGenres, id)
	for reviewID, rev := range t.reviews {
		if rev.BookID == id {
			delete(t.reviews, reviewID)
		}
	}
}

// ============================================================================
// Genres
// ============================================================================

// GenreRepository implements repository.GenreRepository.
type GenreRepository struct{ s *Store }

func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) error {
	return r.s.update(ctx, func(t *tables) error {
		for _, existing := range t.genres {
			if existing.Name == g.Name {
				return &domain.DuplicateGenreNameError{Name: g.Name}
			}
		}
		g.ID = t.nextID(tableGenres)
		t.genres[g.ID] = genreRow(g)
		return nil
	})
}

func (r *GenreRepository) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	var out *domain.Genre
	err := r.s.view(ctx, func(t *tables) error {
		g, ok := t.genres[id]
		if !ok {
			return domain.GenreNotFound(id)
		}
		out = &g
		return nil
	})
	return out, err
}

func (r *GenreRepository) List(ctx context.Context) ([]domain.Genre, error) {
	var out []domain.Genre
	err := r.s.view(ctx, func(t *tables) error {
		out = sortedValues(t.genres)
		return nil
	})
	return out, err
}

func (r *GenreRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Genre, error) {
	out := []domain.Genre{}
	err := r.s.view(ctx, func(t *tables) error {
		for id := range idSet(ids) {
			if g, ok := t.genres[id]; ok {
				out = append(out, g)
			}
		}
		return nil
	})
	sortByID(out, func(g domain.Genre) int64 { return g.ID })
	return out, err
}

func (r *GenreRepository) ListByBookIDs(ctx context.Context, bookIDs []int64) (map[int64][]domain.Genre, error) {
	out := make(map[int64][]domain.Genre, len(bookIDs))
	err := r.s.view(ctx, func(t *tables) error {
		for bookID := range idSet(bookIDs) {
			for genreID := range t.bookGenres[bookID] {
				out[bookID] = append(out[bookID], t.genres[genreID])
			}
			sortByID(out[bookID], func(g domain.Genre) int64 { return g.ID })
		}
		return nil
	})
	return out, err
}

func (r *GenreRepository) Delete(ctx context.Context, id int64) error {
	return r.s.update(ctx, func(t *tables) error {
		if _, ok := t.genres[id]; !ok {
			return domain.GenreNotFound(id)
		}
		delete(t.genres, id)
		for _, set := range t.bookGenres {
			delete(set, id)
		}
		return nil
	})
}

// ============================================================================
// Reviews
// ============================================================================

// ReviewRepository implements repository.ReviewRepository.
type ReviewRepository struct{ s *Store }

func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	return r.s.update(ctx, func(t *tables) error {
		if _, ok := t.books[rev.BookID]; !ok {
			return domain.BookNotFound(rev.BookID)
		}
		rev.ID = t.nextID(tableReviews)
		t.reviews[rev.ID] = *rev
		return nil
	})
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var out *domain.Review
	err := r.s.view(ctx, func(t *tables) error {
		rev, ok := t.reviews[id]
		if !ok {
			return domain.ReviewNotFound(id)
		}
		out = &rev
		return nil
	})
	return out, err
}

func (r *ReviewRepository) List(ctx context.Context, bookID *int64) ([]domain.Review, error) {
	out := []domain.Review{}
	err := r.s.view(ctx, func(t *tables) error {
		for _, rev := range sortedValues(t.reviews) {
			if bookID == nil || rev.BookID == *bookID {
				out = append(out, rev)
			}
		}
		return nil
	})
	return out, err
}

func (r *ReviewRepository) ListByBookIDs(ctx context.Context, bookIDs []int64) ([]domain.Review, error) {
	out := []domain.Review{}
	err := r.s.view(ctx, func(t *tables) error {
		want := idSet(bookIDs)
		for _, rev := range sortedValues(t.reviews) {
			if _, ok := want[rev.BookID]; ok {
				out = append(out, rev)
			}
		}
		return nil
	})
	return out, err
}

func (r *ReviewRepository) Update(ctx context.Context, rev *domain.Review) error {
	return r.s.update(ctx, func(t *tables) error {
		stored, ok := t.reviews[rev.ID]
		if !ok {
			return domain.ReviewNotFound(rev.ID)
		}
		stored.Rating = rev.Rating
		stored.Comment = rev.Comment
		stored.UpdatedAt = rev.UpdatedAt
		t.reviews[rev.ID] = stored
		return nil
	})
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	return r.s.update(ctx, func(t *tables) error {
		if _, ok := t.reviews[id]; !ok {
			return domain.ReviewNotFound(id)
		}
		delete(t.reviews, id)
		return nil
	})
}
