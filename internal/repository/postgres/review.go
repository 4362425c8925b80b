package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/pkg/database"
)

const reviewColumns = `id, rating, comment, reviewer_name, reviewer_email, created_at, updated_at, book_id`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review and sets its ID.
func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) (err error) {
	const query = `
		INSERT INTO reviews (rating, comment, reviewer_name, reviewer_email, created_at, updated_at, book_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		rev.Rating,
		rev.Comment,
		rev.ReviewerName,
		rev.ReviewerEmail,
		rev.CreatedAt,
		rev.UpdatedAt,
		rev.BookID,
	).Scan(&rev.ID)
	if err != nil {
		if _, ok := database.ForeignKeyViolation(err); ok {
			return domain.BookNotFound(rev.BookID)
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (_ *domain.Review, err error) {
	const query = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReview", query)
	defer func() { end(err) }()

	var rev domain.Review
	if err = scanReview(r.db.QueryRow(ctx, query, id), &rev); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ReviewNotFound(id)
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &rev, nil
}

// List returns all reviews, or the reviews of one book when bookID is set.
func (r *ReviewRepository) List(ctx context.Context, bookID *int64) (_ []domain.Review, err error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews ORDER BY id`
	var args []any
	if bookID != nil {
		query = `SELECT ` + reviewColumns + ` FROM reviews WHERE book_id = $1 ORDER BY id`
		args = append(args, *bookID)
	}

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	reviews, err := pgx.CollectRows(rows, rowToReview)
	if err != nil {
		return nil, fmt.Errorf("collect reviews: %w", err)
	}
	return reviews, nil
}

// ListByBookIDs returns the reviews of any of the given books.
func (r *ReviewRepository) ListByBookIDs(ctx context.Context, bookIDs []int64) (_ []domain.Review, err error) {
	const query = `SELECT ` + reviewColumns + ` FROM reviews WHERE book_id = ANY($1) ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListReviewsByBookIDs", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("list reviews by book ids: %w", err)
	}
	reviews, err := pgx.CollectRows(rows, rowToReview)
	if err != nil {
		return nil, fmt.Errorf("collect reviews: %w", err)
	}
	return reviews, nil
}

// Update writes the mutable columns of rev to the stored review.
func (r *ReviewRepository) Update(ctx context.Context, rev *domain.Review) (err error) {
	const query = `UPDATE reviews SET rating = $1, comment = $2, updated_at = $3 WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "UpdateReview", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, rev.Rating, rev.Comment, rev.UpdatedAt, rev.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ReviewNotFound(rev.ID)
	}
	return nil
}

// Delete removes a review.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) (err error) {
	const query = `DELETE FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteReview", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ReviewNotFound(id)
	}
	return nil
}

func scanReview(row pgx.Row, rev *domain.Review) error {
	err := row.Scan(
		&rev.ID,
		&rev.Rating,
		&rev.Comment,
		&rev.ReviewerName,
		&rev.ReviewerEmail,
		&rev.CreatedAt,
		&rev.UpdatedAt,
		&rev.BookID,
	)
	if err != nil {
		return err
	}
	rev.CreatedAt = rev.CreatedAt.UTC()
	if rev.UpdatedAt != nil {
		t := rev.UpdatedAt.UTC()
		rev.UpdatedAt = &t
	}
	return nil
}

func rowToReview(row pgx.CollectableRow) (domain.Review, error) {
	var rev domain.Review
	err := scanReview(row, &rev)
	return rev, err
}
