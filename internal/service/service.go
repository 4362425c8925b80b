package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
)

// Notifier is told about created entities after their transaction commits.
type Notifier interface {
	BookCreated(ctx context.Context, book *domain.Book) error
	ReviewCreated(ctx context.Context, review *domain.Review) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) BookCreated(context.Context, *domain.Book) error     { return nil }
func (NopNotifier) ReviewCreated(context.Context, *domain.Review) error { return nil }

// Service implements the catalog operations. Every mutation validates its
// input, checks references and writes inside a single store transaction.
type Service struct {
	store    repository.Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Service. A nil notifier disables notifications.
func New(store repository.Store, notifier Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for review timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// normalizeISBN trims isbn and maps blank values to nil so that books
// without an ISBN never collide on the unique constraint.
func normalizeISBN(isbn *string) *string {
	if isbn == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*isbn)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// dedupeIDs drops repeated ids, keeping first-occurrence order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// loadGenres resolves ids in order and fails with GenreNotFound for the first
// id that does not exist.
func loadGenres(ctx context.Context, tx repository.Store, ids []int64) ([]domain.Genre, error) {
	if len(ids) == 0 {
		return []domain.Genre{}, nil
	}
	found, err := tx.Genres().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Genre, len(found))
	for _, g := range found {
		byID[g.ID] = g
	}
	genres := make([]domain.Genre, 0, len(ids))
	for _, id := range ids {
		g, ok := byID[id]
		if !ok {
			return nil, domain.GenreNotFound(id)
		}
		genres = append(genres, g)
	}
	return genres, nil
}
