package domain

import (
	"math"
	"time"
)

// Review is a reader's rating of a book.
type Review struct {
	ID            int64      `json:"id"`
	Rating        int        `json:"rating"`
	Comment       *string    `json:"comment,omitempty"`
	ReviewerName  string     `json:"reviewer_name"`
	ReviewerEmail *string    `json:"reviewer_email,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	BookID        int64      `json:"book_id"`
}

// NewReview returns a review created at now. The rating is checked before the
// reviewer name.
func NewReview(bookID int64, rating int, reviewerName string, now time.Time) (*Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	if err := ValidateRequired(EntityReview, "reviewerName", reviewerName); err != nil {
		return nil, err
	}
	return &Review{
		BookID:       bookID,
		Rating:       rating,
		ReviewerName: reviewerName,
		CreatedAt:    now.UTC(),
	}, nil
}

// UpdateRating sets a new rating and stamps UpdatedAt.
func (r *Review) UpdateRating(rating int, now time.Time) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	r.Rating = rating
	r.touch(now)
	return nil
}

// UpdateComment replaces the comment and stamps UpdatedAt.
func (r *Review) UpdateComment(comment *string, now time.Time) {
	r.Comment = comment
	r.touch(now)
}

func (r *Review) touch(now time.Time) {
	t := now.UTC()
	r.UpdatedAt = &t
}

// AverageRating returns the mean of the ratings rounded to two decimals, half
// away from zero, or nil for no reviews.
func AverageRating(reviews []Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := roundMean(sum, len(reviews))
	return &avg
}

// roundMean returns sum/n rounded to two decimals, half away from zero. The
// scaling happens on the integer sum so that an exact half survives the
// division.
func roundMean(sum, n int) float64 {
	return math.Round(float64(sum*100)/float64(n)) / 100
}
