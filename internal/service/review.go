package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
)

// AddReview creates a review of an existing book.
func (s *Service) AddReview(ctx context.Context, in AddReviewInput) (*domain.Review, error) {
	review, err := domain.NewReview(in.BookID, in.Rating, in.ReviewerName, s.now())
	if err != nil {
		return nil, err
	}
	review.Comment = in.Comment
	review.ReviewerEmail = in.ReviewerEmail

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Books().GetByID(ctx, in.BookID); err != nil {
			return err
		}
		return tx.Reviews().Create(ctx, review)
	})
	if err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}

	if err := s.notifier.ReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.Int64("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review added",
		slog.Int64("review_id", review.ID),
		slog.Int64("book_id", review.BookID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// UpdateReview changes the rating and/or comment of a review. UpdatedAt is
// stamped only when at least one of them is supplied.
func (s *Service) UpdateReview(ctx context.Context, in UpdateReviewInput) (*domain.Review, error) {
	var review *domain.Review
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		r, err := tx.Reviews().GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		review = r
		if in.Rating == nil && in.Comment == nil {
			return nil
		}

		now := s.now()
		if in.Rating != nil {
			if err := r.UpdateRating(*in.Rating, now); err != nil {
				return err
			}
		}
		if in.Comment != nil {
			r.UpdateComment(in.Comment, now)
		}
		return tx.Reviews().Update(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.logger.InfoContext(ctx, "review updated", slog.Int64("review_id", review.ID))
	return review, nil
}

// DeleteReview removes a review.
func (s *Service) DeleteReview(ctx context.Context, id int64) error {
	if err := s.store.Reviews().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.logger.InfoContext(ctx, "review deleted", slog.Int64("review_id", id))
	return nil
}

// Review returns the review with the given id.
func (s *Service) Review(ctx context.Context, id int64) (*domain.Review, error) {
	r, err := s.store.Reviews().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

// Reviews returns every review, or the reviews of one book.
func (s *Service) Reviews(ctx context.Context, bookID *int64) ([]domain.Review, error) {
	reviews, err := s.store.Reviews().List(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// ReviewsByBookIDs returns the reviews of each book keyed by book id.
func (s *Service) ReviewsByBookIDs(ctx context.Context, bookIDs []int64) (map[int64][]domain.Review, error) {
	reviews, err := s.store.Reviews().ListByBookIDs(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("list reviews by book ids: %w", err)
	}
	out := make(map[int64][]domain.Review, len(bookIDs))
	for _, r := range reviews {
		out[r.BookID] = append(out[r.BookID], r)
	}
	return out, nil
}
