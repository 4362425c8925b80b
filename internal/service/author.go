package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
)

// AddAuthor creates an author.
func (s *Service) AddAuthor(ctx context.Context, in AddAuthorInput) (*domain.Author, error) {
	author, err := domain.NewAuthor(in.Name)
	if err != nil {
		return nil, err
	}
	author.Biography = in.Biography
	author.DateOfBirth = in.DateOfBirth
	author.Nationality = in.Nationality
	author.ImageURL = in.ImageURL

	if err := s.store.Authors().Create(ctx, author); err != nil {
		return nil, fmt.Errorf("add author: %w", err)
	}

	s.logger.InfoContext(ctx, "author added", slog.Int64("author_id", author.ID))
	return author, nil
}

// UpdateAuthor applies the non-nil fields of in to an existing author.
func (s *Service) UpdateAuthor(ctx context.Context, in UpdateAuthorInput) (*domain.Author, error) {
	if in.Name != nil {
		if err := domain.ValidateRequired(domain.EntityAuthor, "name", *in.Name); err != nil {
			return nil, err
		}
	}

	var author *domain.Author
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		a, err := tx.Authors().GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			a.Name = *in.Name
		}
		if in.Biography != nil {
			a.Biography = in.Biography
		}
		if in.DateOfBirth != nil {
			a.DateOfBirth = in.DateOfBirth
		}
		if in.Nationality != nil {
			a.Nationality = in.Nationality
		}
		if in.ImageURL != nil {
			a.ImageURL = in.ImageURL
		}
		if err := tx.Authors().Update(ctx, a); err != nil {
			return err
		}
		author = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}

	s.logger.InfoContext(ctx, "author updated", slog.Int64("author_id", author.ID))
	return author, nil
}

// DeleteAuthor removes an author together with its books and their reviews.
func (s *Service) DeleteAuthor(ctx context.Context, id int64) error {
	if err := s.store.Authors().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	s.logger.InfoContext(ctx, "author deleted", slog.Int64("author_id", id))
	return nil
}

// Author returns the author with the given id.
func (s *Service) Author(ctx context.Context, id int64) (*domain.Author, error) {
	a, err := s.store.Authors().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	return a, nil
}

// Authors returns every author.
func (s *Service) Authors(ctx context.Context) ([]domain.Author, error) {
	authors, err := s.store.Authors().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// AuthorsByIDs returns the existing authors among ids keyed by id.
func (s *Service) AuthorsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Author, error) {
	authors, err := s.store.Authors().ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list authors by ids: %w", err)
	}
	out := make(map[int64]domain.Author, len(authors))
	for _, a := range authors {
		out[a.ID] = a
	}
	return out, nil
}
