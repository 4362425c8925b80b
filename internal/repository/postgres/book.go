package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
	"github.com/utafrali/LibraryGo/pkg/database"
	"github.com/utafrali/LibraryGo/pkg/pagination"
)

const (
	bookColumns = `id, title, isbn, description, published_date, page_count, cover_image_url, publisher, language, author_id`

	isbnConstraint = "books_isbn_key"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	db database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(db database.DBTX) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book and sets its ID.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) (err error) {
	const query = `
		INSERT INTO books (title, isbn, description, published_date, page_count, cover_image_url, publisher, language, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "CreateBook", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		b.Title,
		b.ISBN,
		b.Description,
		b.PublishedDate,
		b.PageCount,
		b.CoverImageURL,
		b.Publisher,
		b.Language,
		b.AuthorID,
	).Scan(&b.ID)
	if err != nil {
		return bookWriteError("insert book", b, err)
	}
	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id int64) (_ *domain.Book, err error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetBook", query)
	defer func() { end(err) }()

	var b domain.Book
	if err = scanBook(r.db.QueryRow(ctx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.BookNotFound(id)
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}
	return &b, nil
}

// List returns books matching the given filter with the total count.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter, page pagination.Params) (_ []domain.Book, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, containsPattern(strings.TrimSpace(*filter.Search)))
		argIndex++
	}

	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", argIndex))
		args = append(args, *filter.AuthorID)
		argIndex++
	}

	if filter.GenreID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = books.id AND bg.genre_id = $%d)", argIndex))
		args = append(args, *filter.GenreID)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM books
		%s
		ORDER BY id
		LIMIT $%d OFFSET $%d`,
		bookColumns, whereClause, argIndex, argIndex+1,
	)

	ctx, end := database.TraceQuery(ctx, "ListBooks", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, append(args, page.PerPage, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var (
		books      = []domain.Book{}
		totalCount int
	)
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.ISBN,
			&b.Description,
			&b.PublishedDate,
			&b.PageCount,
			&b.CoverImageURL,
			&b.Publisher,
			&b.Language,
			&b.AuthorID,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	// A page past the end carries no window count.
	if len(books) == 0 && page.Offset > 0 {
		countQuery := "SELECT count(*) FROM books " + whereClause
		if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count books: %w", err)
		}
	}

	return books, totalCount, nil
}

// ListByIDs returns the books whose IDs are in ids.
func (r *BookRepository) ListByIDs(ctx context.Context, ids []int64) (_ []domain.Book, err error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = ANY($1) ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListBooksByIDs", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list books by ids: %w", err)
	}
	books, err := pgx.CollectRows(rows, rowToBook)
	if err != nil {
		return nil, fmt.Errorf("collect books: %w", err)
	}
	return books, nil
}

// ListByAuthorIDs returns the books written by any of the given authors.
func (r *BookRepository) ListByAuthorIDs(ctx context.Context, authorIDs []int64) (_ []domain.Book, err error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE author_id = ANY($1) ORDER BY id`

	ctx, end := database.TraceQuery(ctx, "ListBooksByAuthorIDs", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("list books by author ids: %w", err)
	}
	books, err := pgx.CollectRows(rows, rowToBook)
	if err != nil {
		return nil, fmt.Errorf("collect books: %w", err)
	}
	return books, nil
}

// ListByGenreIDs returns the books tagged with each genre, keyed by genre ID.
func (r *BookRepository) ListByGenreIDs(ctx context.Context, genreIDs []int64) (_ map[int64][]domain.Book, err error) {
	const query = `
		SELECT bg.genre_id, b.id, b.title, b.isbn, b.description, b.published_date, b.page_count,
		       b.cover_image_url, b.publisher, b.language, b.author_id
		FROM books b
		JOIN book_genres bg ON bg.book_id = b.id
		WHERE bg.genre_id = ANY($1)
		ORDER BY b.id`

	ctx, end := database.TraceQuery(ctx, "ListBooksByGenreIDs", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, genreIDs)
	if err != nil {
		return nil, fmt.Errorf("list books by genre ids: %w", err)
	}
	defer rows.Close()

	byGenre := make(map[int64][]domain.Book, len(genreIDs))
	for rows.Next() {
		var (
			genreID int64
			b       domain.Book
		)
		if err := rows.Scan(
			&genreID,
			&b.ID,
			&b.Title,
			&b.ISBN,
			&b.Description,
			&b.PublishedDate,
			&b.PageCount,
			&b.CoverImageURL,
			&b.Publisher,
			&b.Language,
			&b.AuthorID,
		); err != nil {
			return nil, fmt.Errorf("scan genre book row: %w", err)
		}
		byGenre[genreID] = append(byGenre[genreID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genre book rows: %w", err)
	}
	return byGenre, nil
}

// ISBNTaken reports whether a book other than excludeID already uses isbn.
func (r *BookRepository) ISBNTaken(ctx context.Context, isbn string, excludeID int64) (taken bool, err error) {
	const query = `SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`

	ctx, end := database.TraceQuery(ctx, "CheckISBN", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query, isbn, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("check isbn: %w", err)
	}
	return taken, nil
}

// Update writes every column of b to the stored book.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) (err error) {
	const query = `
		UPDATE books
		SET title = $1, isbn = $2, description = $3, published_date = $4, page_count = $5,
		    cover_image_url = $6, publisher = $7, language = $8, author_id = $9
		WHERE id = $10`

	ctx, end := database.TraceQuery(ctx, "UpdateBook", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query,
		b.Title,
		b.ISBN,
		b.Description,
		b.PublishedDate,
		b.PageCount,
		b.CoverImageURL,
		b.Publisher,
		b.Language,
		b.AuthorID,
		b.ID,
	)
	if err != nil {
		return bookWriteError("update book", b, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.BookNotFound(b.ID)
	}
	return nil
}

// SetGenres replaces the genre associations of a book with genreIDs.
func (r *BookRepository) SetGenres(ctx context.Context, bookID int64, genreIDs []int64) (err error) {
	const (
		clearQuery  = `DELETE FROM book_genres WHERE book_id = $1`
		insertQuery = `
			INSERT INTO book_genres (book_id, genre_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING`
	)

	ctx, end := database.TraceQuery(ctx, "SetBookGenres", insertQuery)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, clearQuery, bookID); err != nil {
		return fmt.Errorf("clear book genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}
	if _, err = r.db.Exec(ctx, insertQuery, bookID, genreIDs); err != nil {
		return fmt.Errorf("insert book genres: %w", err)
	}
	return nil
}

// Delete removes a book. Reviews and genre associations go with it through
// ON DELETE CASCADE.
func (r *BookRepository) Delete(ctx context.Context, id int64) (err error) {
	const query = `DELETE FROM books WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteBook", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.BookNotFound(id)
	}
	return nil
}

// bookWriteError maps constraint violations raised by an insert or update of
// b to domain errors.
func bookWriteError(op string, b *domain.Book, err error) error {
	if constraint, ok := database.UniqueViolation(err); ok && (constraint == isbnConstraint || constraint == "") {
		isbn := ""
		if b.ISBN != nil {
			isbn = *b.ISBN
		}
		return &domain.DuplicateISBNError{ISBN: isbn}
	}
	if _, ok := database.ForeignKeyViolation(err); ok {
		return domain.AuthorNotFound(b.AuthorID)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanBook(row pgx.Row, b *domain.Book) error {
	return row.Scan(
		&b.ID,
		&b.Title,
		&b.ISBN,
		&b.Description,
		&b.PublishedDate,
		&b.PageCount,
		&b.CoverImageURL,
		&b.Publisher,
		&b.Language,
		&b.AuthorID,
	)
}

func rowToBook(row pgx.CollectableRow) (domain.Book, error) {
	var b domain.Book
	err := scanBook(row, &b)
	return b, err
}
