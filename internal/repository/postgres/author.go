package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/pkg/database"
)

const authorColumns = `id, name, biography, date_of_birth, nationality, image_url`

// AuthorRepository implements repository.AuthorRepository using PostgreSQL.
type AuthorRepository struct {
	db database.DBTX
}

// NewAuthorRepository creates a new PostgreSQL-backed author repository.
func NewAuthorRepository(db database.DBTX) *AuthorRepository {
	return &AuthorRepository{db: db}
}

// Create inserts a new author and sets its ID.
func (r *AuthorRepository) Create(ctx context.Context, a *domain.Author) (err error) {
	const query = `
		INSERT INTO authors (name, biography, date_of_birth, nationality, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateAuthor", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query, a.Name, a.Biography, a.DateOfBirth, a.Nationality, a.ImageURL).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

// GetByID retrieves an author by its ID.
func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (_ *domain.Author, err error) {
	const query = `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetAuthor", query)
	defer func() { end(err) }()

	var a domain.Author
	if err = scanAuthor(r.db.QueryRow(ctx, query, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.AuthorNotFound(id)
		}
		return nil, fmt.Errorf("scan author: %w", err)
	}
	return &a, nil
}

// List returns all authors ordered by ID.
func (r *AuthorRepository) List(ctx context.Context) (_ []domain.Author, err error) {
	const query = `SELECT ` + authorColumns + ` FROM authors ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListAuthors", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	authors, err := pgx.CollectRows(rows, rowToAuthor)
	if err != nil {
		return nil, fmt.Errorf("collect authors: %w", err)
	}
	return authors, nil
}

// ListByIDs returns the authors whose IDs are in ids.
func (r *AuthorRepository) ListByIDs(ctx context.Context, ids []int64) (_ []domain.Author, err error) {
	const query = `SELECT ` + authorColumns + ` FROM authors WHERE id = ANY($1) ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListAuthorsByIDs", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list authors by ids: %w", err)
	}
	authors, err := pgx.CollectRows(rows, rowToAuthor)
	if err != nil {
		return nil, fmt.Errorf("collect authors: %w", err)
	}
	return authors, nil
}

// Update writes every column of a to the stored author.
func (r *AuthorRepository) Update(ctx context.Context, a *domain.Author) (err error) {
	const query = `
		UPDATE authors
		SET name = $1, biography = $2, date_of_birth = $3, nationality = $4, image_url = $5
		WHERE id = $6`

	ctx, end := database.TraceQuery(ctx, "UpdateAuthor", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, a.Name, a.Biography, a.DateOfBirth, a.Nationality, a.ImageURL, a.ID)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.AuthorNotFound(a.ID)
	}
	return nil
}

// Delete removes an author. Books and their reviews go with it through
// ON DELETE CASCADE.
func (r *AuthorRepository) Delete(ctx context.Context, id int64) (err error) {
	const query = `DELETE FROM authors WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteAuthor", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.AuthorNotFound(id)
	}
	return nil
}

func scanAuthor(row pgx.Row, a *domain.Author) error {
	return row.Scan(&a.ID, &a.Name, &a.Biography, &a.DateOfBirth, &a.Nationality, &a.ImageURL)
}

func rowToAuthor(row pgx.CollectableRow) (domain.Author, error) {
	var a domain.Author
	err := scanAuthor(row, &a)
	return a, err
}
