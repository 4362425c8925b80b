package postgres

import (
	"context"
	"embed"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/LibraryGo/internal/repository"
	"github.com/utafrali/LibraryGo/pkg/database"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations in the layout expected by
// database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Store implements repository.Store on top of a pool or a transaction.
type Store struct {
	db database.DBTX
}

// NewStore creates a store whose repositories run against db.
func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

func (s *Store) Authors() repository.AuthorRepository { return NewAuthorRepository(s.db) }
func (s *Store) Books() repository.BookRepository     { return NewBookRepository(s.db) }
func (s *Store) Genres() repository.GenreRepository   { return NewGenreRepository(s.db) }
func (s *Store) Reviews() repository.ReviewRepository { return NewReviewRepository(s.db) }

// WithTx runs fn inside a transaction. Nested calls open a savepoint.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return database.InTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(NewStore(tx))
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with the
// wildcard characters in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
