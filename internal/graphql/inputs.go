package graphql

import (
	"time"

	"github.com/utafrali/LibraryGo/internal/service"
)

// --- Request DTOs ---
//
// GraphQL input objects are decoded into these structs and validated before
// they reach the service. Required names are plain strings so that a null
// value arrives as "" and is rejected by the domain as blank.

type addAuthorRequest struct {
	Name        string     `json:"name" validate:"max=255"`
	Biography   *string    `json:"biography"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Nationality *string    `json:"nationality" validate:"omitempty,max=100"`
	ImageURL    *string    `json:"imageUrl" validate:"omitempty,url,max=2048"`
}

func (r addAuthorRequest) input() service.AddAuthorInput {
	return service.AddAuthorInput{
		Name:        r.Name,
		Biography:   r.Biography,
		DateOfBirth: r.DateOfBirth,
		Nationality: r.Nationality,
		ImageURL:    r.ImageURL,
	}
}

type updateAuthorRequest struct {
	ID          int64      `json:"id"`
	Name        *string    `json:"name" validate:"omitempty,max=255"`
	Biography   *string    `json:"biography"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Nationality *string    `json:"nationality" validate:"omitempty,max=100"`
	ImageURL    *string    `json:"imageUrl" validate:"omitempty,url,max=2048"`
}

func (r updateAuthorRequest) input() service.UpdateAuthorInput {
	return service.UpdateAuthorInput{
		ID:          r.ID,
		Name:        r.Name,
		Biography:   r.Biography,
		DateOfBirth: r.DateOfBirth,
		Nationality: r.Nationality,
		ImageURL:    r.ImageURL,
	}
}

type addBookRequest struct {
	Title         string     `json:"title" validate:"max=500"`
	ISBN          *string    `json:"isbn" validate:"omitempty,min=10,max=17"`
	Description   *string    `json:"description"`
	PublishedDate *time.Time `json:"publishedDate"`
	PageCount     *int       `json:"pageCount" validate:"omitempty,gte=0"`
	CoverImageURL *string    `json:"coverImageUrl" validate:"omitempty,url,max=2048"`
	Publisher     *string    `json:"publisher" validate:"omitempty,max=255"`
	Language      *string    `json:"language" validate:"omitempty,max=50"`
	AuthorID      int64      `json:"authorId"`
	GenreIDs      []int64    `json:"genreIds"`
}

func (r addBookRequest) input() service.AddBookInput {
	return service.AddBookInput{
		Title:         r.Title,
		ISBN:          r.ISBN,
		Description:   r.Description,
		PublishedDate: r.PublishedDate,
		PageCount:     r.PageCount,
		CoverImageURL: r.CoverImageURL,
		Publisher:     r.Publisher,
		Language:      r.Language,
		AuthorID:      r.AuthorID,
		GenreIDs:      r.GenreIDs,
	}
}

type updateBookRequest struct {
	ID            int64      `json:"id"`
	Title         *string    `json:"title" validate:"omitempty,max=500"`
	ISBN          *string    `json:"isbn" validate:"omitempty,min=10,max=17"`
	Description   *string    `json:"description"`
	PublishedDate *time.Time `json:"publishedDate"`
	PageCount     *int       `json:"pageCount" validate:"omitempty,gte=0"`
	CoverImageURL *string    `json:"coverImageUrl" validate:"omitempty,url,max=2048"`
	Publisher     *string    `json:"publisher" validate:"omitempty,max=255"`
	Language      *string    `json:"language" validate:"omitempty,max=50"`
	AuthorID      *int64     `json:"authorId"`
	GenreIDs      *[]int64   `json:"genreIds"`
}

func (r updateBookRequest) input() service.UpdateBookInput {
	return service.UpdateBookInput{
		ID:            r.ID,
		Title:         r.Title,
		ISBN:          r.ISBN,
		Description:   r.Description,
		PublishedDate: r.PublishedDate,
		PageCount:     r.PageCount,
		CoverImageURL: r.CoverImageURL,
		Publisher:     r.Publisher,
		Language:      r.Language,
		AuthorID:      r.AuthorID,
		GenreIDs:      r.GenreIDs,
	}
}

type addGenreRequest struct {
	Name        string  `json:"name" validate:"max=100"`
	Description *string `json:"description"`
}

func (r addGenreRequest) input() service.AddGenreInput {
	return service.AddGenreInput{Name: r.Name, Description: r.Description}
}

type addReviewRequest struct {
	BookID        int64   `json:"bookId"`
	Rating        int     `json:"rating"`
	Comment       *string `json:"comment" validate:"omitempty,max=5000"`
	ReviewerName  string  `json:"reviewerName" validate:"max=255"`
	ReviewerEmail *string `json:"reviewerEmail" validate:"omitempty,email,max=255"`
}

func (r addReviewRequest) input() service.AddReviewInput {
	return service.AddReviewInput{
		BookID:        r.BookID,
		Rating:        r.Rating,
		Comment:       r.Comment,
		ReviewerName:  r.ReviewerName,
		ReviewerEmail: r.ReviewerEmail,
	}
}

type updateReviewRequest struct {
	ID      int64   `json:"id"`
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment" validate:"omitempty,max=5000"`
}

func (r updateReviewRequest) input() service.UpdateReviewInput {
	return service.UpdateReviewInput{ID: r.ID, Rating: r.Rating, Comment: r.Comment}
}
