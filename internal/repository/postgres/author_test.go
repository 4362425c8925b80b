package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/LibraryGo/internal/domain"
	apperrors "github.com/utafrali/LibraryGo/pkg/errors"
)

var authorColumnNames = []string{"id", "name", "biography", "date_of_birth", "nationality", "image_url"}

func sampleAuthor() domain.Author {
	return domain.Author{
		ID:          1,
		Name:        "Ursula K. Le Guin",
		Biography:   strPtr("American author of speculative fiction."),
		DateOfBirth: datePtr(1929, time.October, 21),
		Nationality: strPtr("American"),
	}
}

func authorRow(a domain.Author) []any {
	return []any{a.ID, a.Name, a.Biography, a.DateOfBirth, a.Nationality, a.ImageURL}
}

func TestAuthorRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	a := sampleAuthor()
	a.ID = 0
	mock.ExpectQuery("INSERT INTO authors").
		WithArgs(a.Name, a.Biography, a.DateOfBirth, a.Nationality, a.ImageURL).
		WillReturnRows(idRows(42))

	err := repo.Create(context.Background(), &a)
	require.NoError(t, err)
	assert.Equal(t, int64(42), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepository_Create_Error(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	a := sampleAuthor()
	mock.ExpectQuery("INSERT INTO authors").
		WithArgs(a.Name, a.Biography, a.DateOfBirth, a.Nationality, a.ImageURL).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert author")
}

func TestAuthorRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	a := sampleAuthor()
	mock.ExpectQuery("SELECT .+ FROM authors WHERE id").
		WithArgs(a.ID).
		WillReturnRows(pgxmock.NewRows(authorColumnNames).AddRow(authorRow(a)...))

	got, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, a.Biography, got.Biography)
	assert.Equal(t, a.DateOfBirth, got.DateOfBirth)
	assert.Nil(t, got.ImageURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM authors WHERE id").
		WithArgs(int64(9999)).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), 9999)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, domain.CodeAuthorNotFound, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepository_List(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	a := sampleAuthor()
	b := domain.Author{ID: 2, Name: "Octavia E. Butler"}
	mock.ExpectQuery("SELECT .+ FROM authors ORDER BY id").
		WillReturnRows(pgxmock.NewRows(authorColumnNames).
			AddRow(authorRow(a)...).
			AddRow(authorRow(b)...))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Octavia E. Butler", got[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepository_ListByIDs(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	a := sampleAuthor()
	mock.ExpectQuery(`SELECT .+ FROM authors WHERE id = ANY\(\$1\)`).
		WithArgs([]int64{1, 7}).
		WillReturnRows(pgxmock.NewRows(authorColumnNames).AddRow(authorRow(a)...))

	got, err := repo.ListByIDs(context.Background(), []int64{1, 7})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepository_Update_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	a := sampleAuthor()
	mock.ExpectExec("UPDATE authors").
		WithArgs(a.Name, a.Biography, a.DateOfBirth, a.Nationality, a.ImageURL, a.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), &a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	a := sampleAuthor()
	mock.ExpectExec("UPDATE authors").
		WithArgs(a.Name, a.Biography, a.DateOfBirth, a.Nationality, a.ImageURL, a.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &a)
	assert.Equal(t, domain.AuthorNotFound(a.ID), err)
}

func TestAuthorRepository_Delete(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewAuthorRepository(mock)

	mock.ExpectExec("DELETE FROM authors WHERE id").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM authors WHERE id").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), 1))

	err := repo.Delete(context.Background(), 1)
	assert.Equal(t, domain.CodeAuthorNotFound, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
