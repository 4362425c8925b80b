package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
	"github.com/utafrali/LibraryGo/pkg/pagination"
)

// AddBook creates a book after checking its author, ISBN and genres.
func (s *Service) AddBook(ctx context.Context, in AddBookInput) (*domain.Book, error) {
	book, err := domain.NewBook(in.Title, in.AuthorID)
	if err != nil {
		return nil, err
	}
	book.ISBN = normalizeISBN(in.ISBN)
	book.Description = in.Description
	book.PublishedDate = in.PublishedDate
	book.PageCount = in.PageCount
	book.CoverImageURL = in.CoverImageURL
	book.Publisher = in.Publisher
	if in.Language != nil && strings.TrimSpace(*in.Language) != "" {
		book.Language = *in.Language
	}
	genreIDs := dedupeIDs(in.GenreIDs)

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Authors().GetByID(ctx, book.AuthorID); err != nil {
			return err
		}
		if book.ISBN != nil {
			taken, err := tx.Books().ISBNTaken(ctx, *book.ISBN, 0)
			if err != nil {
				return err
			}
			if taken {
				return &domain.DuplicateISBNError{ISBN: *book.ISBN}
			}
		}
		genres, err := loadGenres(ctx, tx, genreIDs)
		if err != nil {
			return err
		}
		if err := tx.Books().Create(ctx, book); err != nil {
			return err
		}
		if len(genreIDs) > 0 {
			if err := tx.Books().SetGenres(ctx, book.ID, genreIDs); err != nil {
				return err
			}
		}
		book.SetGenres(genres)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add book: %w", err)
	}

	if err := s.notifier.BookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.Int64("book_id", book.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "book added",
		slog.Int64("book_id", book.ID),
		slog.Int64("author_id", book.AuthorID),
		slog.Int("genres", book.GenreCount()),
	)
	return book, nil
}

// UpdateBook applies the non-nil fields of in to an existing book.
func (s *Service) UpdateBook(ctx context.Context, in UpdateBookInput) (*domain.Book, error) {
	if in.Title != nil {
		if err := domain.ValidateRequired(domain.EntityBook, "title", *in.Title); err != nil {
			return nil, err
		}
	}
	// Optional fields cannot be cleared through update, so a supplied ISBN
	// must not be blank.
	if in.ISBN != nil {
		if err := domain.ValidateRequired(domain.EntityBook, "isbn", *in.ISBN); err != nil {
			return nil, err
		}
	}

	var book *domain.Book
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		b, err := tx.Books().GetByID(ctx, in.ID)
		if err != nil {
			return err
		}

		if in.Title != nil {
			b.Title = *in.Title
		}
		if in.AuthorID != nil && *in.AuthorID != b.AuthorID {
			if _, err := tx.Authors().GetByID(ctx, *in.AuthorID); err != nil {
				return err
			}
			b.AuthorID = *in.AuthorID
		}
		if in.ISBN != nil {
			isbn := normalizeISBN(in.ISBN)
			if isbn != nil && (b.ISBN == nil || *b.ISBN != *isbn) {
				taken, err := tx.Books().ISBNTaken(ctx, *isbn, b.ID)
				if err != nil {
					return err
				}
				if taken {
					return &domain.DuplicateISBNError{ISBN: *isbn}
				}
			}
			b.ISBN = isbn
		}
		if in.Description != nil {
			b.Description = in.Description
		}
		if in.PublishedDate != nil {
			b.PublishedDate = in.PublishedDate
		}
		if in.PageCount != nil {
			b.PageCount = in.PageCount
		}
		if in.CoverImageURL != nil {
			b.CoverImageURL = in.CoverImageURL
		}
		if in.Publisher != nil {
			b.Publisher = in.Publisher
		}
		if in.Language != nil {
			b.Language = *in.Language
			if strings.TrimSpace(b.Language) == "" {
				b.Language = domain.DefaultLanguage
			}
		}

		var genres []domain.Genre
		if in.GenreIDs != nil {
			ids := dedupeIDs(*in.GenreIDs)
			if genres, err = loadGenres(ctx, tx, ids); err != nil {
				return err
			}
			if err := tx.Books().SetGenres(ctx, b.ID, ids); err != nil {
				return err
			}
		} else {
			current, err := tx.Genres().ListByBookIDs(ctx, []int64{b.ID})
			if err != nil {
				return err
			}
			genres = current[b.ID]
		}

		if err := tx.Books().Update(ctx, b); err != nil {
			return err
		}
		b.SetGenres(genres)
		book = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.logger.InfoContext(ctx, "book updated", slog.Int64("book_id", book.ID))
	return book, nil
}

// DeleteBook removes a book together with its reviews and genre links.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	if err := s.store.Books().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	s.logger.InfoContext(ctx, "book deleted", slog.Int64("book_id", id))
	return nil
}

// Book returns the book with the given id.
func (s *Service) Book(ctx context.Context, id int64) (*domain.Book, error) {
	b, err := s.store.Books().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// Books returns one page of books matching filter.
func (s *Service) Books(ctx context.Context, filter repository.BookFilter, page pagination.Params) (pagination.Result[domain.Book], error) {
	books, total, err := s.store.Books().List(ctx, filter, page)
	if err != nil {
		return pagination.Result[domain.Book]{}, fmt.Errorf("list books: %w", err)
	}
	return pagination.NewResult(books, total, page), nil
}

// BooksByIDs returns the books among ids that exist, keyed by id.
func (s *Service) BooksByIDs(ctx context.Context, ids []int64) (map[int64]domain.Book, error) {
	books, err := s.store.Books().ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list books by ids: %w", err)
	}
	out := make(map[int64]domain.Book, len(books))
	for _, b := range books {
		out[b.ID] = b
	}
	return out, nil
}

// BooksByAuthorIDs returns the books of each author keyed by author id.
func (s *Service) BooksByAuthorIDs(ctx context.Context, authorIDs []int64) (map[int64][]domain.Book, error) {
	books, err := s.store.Books().ListByAuthorIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("list books by author ids: %w", err)
	}
	out := make(map[int64][]domain.Book, len(authorIDs))
	for _, b := range books {
		out[b.AuthorID] = append(out[b.AuthorID], b)
	}
	return out, nil
}

// BooksByGenreIDs returns the books tagged with each genre keyed by genre id.
func (s *Service) BooksByGenreIDs(ctx context.Context, genreIDs []int64) (map[int64][]domain.Book, error) {
	books, err := s.store.Books().ListByGenreIDs(ctx, genreIDs)
	if err != nil {
		return nil, fmt.Errorf("list books by genre ids: %w", err)
	}
	return books, nil
}
