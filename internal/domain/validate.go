package domain

import "strings"

// Inclusive bounds of a review rating.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidateRequired fails with a BlankFieldError when value is empty or only
// whitespace.
func ValidateRequired(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &BlankFieldError{Entity: entity, Field: field}
	}
	return nil
}

// ValidateRating fails with an InvalidRatingError when r is outside
// [MinRating, MaxRating].
func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return &InvalidRatingError{Rating: r}
	}
	return nil
}
