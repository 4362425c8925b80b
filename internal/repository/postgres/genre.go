package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/pkg/database"
)

const (
	genreColumns = `id, name, description`

	genreNameConstraint = "genres_name_key"
)

// GenreRepository implements repository.GenreRepository using PostgreSQL.
type GenreRepository struct {
	db database.DBTX
}

// NewGenreRepository creates a new PostgreSQL-backed genre repository.
func NewGenreRepository(db database.DBTX) *GenreRepository {
	return &GenreRepository{db: db}
}

// Create inserts a new genre and sets its ID.
func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) (err error) {
	const query = `INSERT INTO genres (name, description) VALUES ($1, $2) RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateGenre", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query, g.Name, g.Description).Scan(&g.ID); err != nil {
		if constraint, ok := database.UniqueViolation(err); ok && (constraint == genreNameConstraint || constraint == "") {
			return &domain.DuplicateGenreNameError{Name: g.Name}
		}
		return fmt.Errorf("insert genre: %w", err)
	}
	return nil
}

// GetByID retrieves a genre by its ID.
func (r *GenreRepository) GetByID(ctx context.Context, id int64) (_ *domain.Genre, err error) {
	const query = `SELECT ` + genreColumns + ` FROM genres WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetGenre", query)
	defer func() { end(err) }()

	var g domain.Genre
	if err = r.db.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.GenreNotFound(id)
		}
		return nil, fmt.Errorf("scan genre: %w", err)
	}
	return &g, nil
}

// List returns all genres ordered by ID.
func (r *GenreRepository) List(ctx context.Context) (_ []domain.Genre, err error) {
	const query = `SELECT ` + genreColumns + ` FROM genres ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListGenres", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	genres, err := pgx.CollectRows(rows, rowToGenre)
	if err != nil {
		return nil, fmt.Errorf("collect genres: %w", err)
	}
	return genres, nil
}

// ListByIDs returns the genres whose IDs are in ids.
func (r *GenreRepository) ListByIDs(ctx context.Context, ids []int64) (_ []domain.Genre, err error) {
	const query = `SELECT ` + genreColumns + ` FROM genres WHERE id = ANY($1) ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListGenresByIDs", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list genres by ids: %w", err)
	}
	genres, err := pgx.CollectRows(rows, rowToGenre)
	if err != nil {
		return nil, fmt.Errorf("collect genres: %w", err)
	}
	return genres, nil
}

// ListByBookIDs returns the genres of each book, keyed by book ID.
func (r *GenreRepository) ListByBookIDs(ctx context.Context, bookIDs []int64) (_ map[int64][]domain.Genre, err error) {
	const query = `
		SELECT bg.book_id, g.id, g.name, g.description
		FROM genres g
		JOIN book_genres bg ON bg.genre_id = g.id
		WHERE bg.book_id = ANY($1)
		ORDER BY g.id`

	ctx, end := database.TraceQuery(ctx, "ListGenresByBookIDs", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("list genres by book ids: %w", err)
	}
	defer rows.Close()

	byBook := make(map[int64][]domain.Genre, len(bookIDs))
	for rows.Next() {
		var (
			bookID int64
			g      domain.Genre
		)
		if err := rows.Scan(&bookID, &g.ID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("scan book genre row: %w", err)
		}
		byBook[bookID] = append(byBook[bookID], g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book genre rows: %w", err)
	}
	return byBook, nil
}

// Delete removes a genre. Its book associations go with it through
// ON DELETE CASCADE.
func (r *GenreRepository) Delete(ctx context.Context, id int64) (err error) {
	const query = `DELETE FROM genres WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteGenre", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.GenreNotFound(id)
	}
	return nil
}

func rowToGenre(row pgx.CollectableRow) (domain.Genre, error) {
	var g domain.Genre
	err := row.Scan(&g.ID, &g.Name, &g.Description)
	return g, err
}
