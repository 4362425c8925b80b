package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/LibraryGo/internal/domain"
)

// AddGenre creates a genre. Names are unique.
func (s *Service) AddGenre(ctx context.Context, in AddGenreInput) (*domain.Genre, error) {
	genre, err := domain.NewGenre(in.Name)
	if err != nil {
		return nil, err
	}
	genre.Description = in.Description

	if err := s.store.Genres().Create(ctx, genre); err != nil {
		return nil, fmt.Errorf("add genre: %w", err)
	}

	s.logger.InfoContext(ctx, "genre added",
		slog.Int64("genre_id", genre.ID),
		slog.String("name", genre.Name),
	)
	return genre, nil
}

// DeleteGenre removes a genre and detaches it from its books. It fails with
// GenreNotFound when the genre does not exist.
func (s *Service) DeleteGenre(ctx context.Context, id int64) error {
	if err := s.store.Genres().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	s.logger.InfoContext(ctx, "genre deleted", slog.Int64("genre_id", id))
	return nil
}

// Genre returns the genre with the given id.
func (s *Service) Genre(ctx context.Context, id int64) (*domain.Genre, error) {
	g, err := s.store.Genres().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	}
	return g, nil
}

// Genres returns every genre.
func (s *Service) Genres(ctx context.Context) ([]domain.Genre, error) {
	genres, err := s.store.Genres().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// GenresByBookIDs returns the genres of each book keyed by book id.
func (s *Service) GenresByBookIDs(ctx context.Context, bookIDs []int64) (map[int64][]domain.Genre, error) {
	genres, err := s.store.Genres().ListByBookIDs(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("list genres by book ids: %w", err)
	}
	return genres, nil
}
