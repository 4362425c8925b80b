// Package seed populates a catalog with a small set of authors, genres,
// books and reviews. Seeding goes through the service layer so every
// validation and consistency rule applies, and it is safe to run repeatedly:
// existing genres and authors are matched by name, books by author and title.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/service"
)

// Catalog is the subset of the service used for seeding.
type Catalog interface {
	Authors(ctx context.Context) ([]domain.Author, error)
	Genres(ctx context.Context) ([]domain.Genre, error)
	BooksByAuthorIDs(ctx context.Context, authorIDs []int64) (map[int64][]domain.Book, error)
	AddAuthor(ctx context.Context, in service.AddAuthorInput) (*domain.Author, error)
	AddGenre(ctx context.Context, in service.AddGenreInput) (*domain.Genre, error)
	AddBook(ctx context.Context, in service.AddBookInput) (*domain.Book, error)
	AddReview(ctx context.Context, in service.AddReviewInput) (*domain.Review, error)
}

// Result counts the entities created by a run.
type Result struct {
	Authors int
	Genres  int
	Books   int
	Reviews int
}

// --------------------------------------------------------------------------
// Seed data definitions
// --------------------------------------------------------------------------

type genreDef struct {
	name        string
	description string
}

type authorDef struct {
	name        string
	nationality string
	born        string
	biography   string
}

type reviewDef struct {
	rating   int
	reviewer string
	comment  string
}

type bookDef struct {
	title     string
	author    string
	isbn      string
	published string
	pages     int
	publisher string
	genres    []string
	reviews   []reviewDef
}

var genres = []genreDef{
	{"Science Fiction", "Speculative stories about science, technology and the future."},
	{"Fantasy", "Magic, myth and invented worlds."},
	{"Classics", "Enduring works of literature."},
	{"Mystery", "Crime, detection and suspense."},
}

var authors = []authorDef{
	{"Frank Herbert", "American", "1920-10-08", "American author best known for the Dune saga."},
	{"Ursula K. Le Guin", "American", "1929-10-21", "Author of the Earthsea and Hainish cycles."},
	{"Jane Austen", "British", "1775-12-16", "English novelist of manners and marriage."},
	{"Agatha Christie", "British", "1890-09-15", "Creator of Hercule Poirot and Miss Marple."},
}

var books = []bookDef{
	{
		title: "Dune", author: "Frank Herbert", isbn: "9780441013593",
		published: "1965-08-01", pages: 617, publisher: "Ace Books",
		genres: []string{"Science Fiction", "Classics"},
		reviews: []reviewDef{
			{5, "Ada", "A towering piece of world building."},
			{4, "Linus", "Slow start, unforgettable finish."},
			{4, "Grace", ""},
		},
	},
	{
		title: "Dune Messiah", author: "Frank Herbert", isbn: "9780593098233",
		published: "1969-10-15", pages: 336, publisher: "Ace Books",
		genres:  []string{"Science Fiction"},
		reviews: []reviewDef{{3, "Linus", "Darker and shorter than the first."}},
	},
	{
		title: "The Left Hand of Darkness", author: "Ursula K. Le Guin", isbn: "9780441478125",
		published: "1969-03-01", pages: 304, publisher: "Ace Books",
		genres:  []string{"Science Fiction"},
		reviews: []reviewDef{{5, "Margaret", "Quietly radical."}},
	},
	{
		title: "A Wizard of Earthsea", author: "Ursula K. Le Guin", isbn: "9780547773742",
		published: "1968-11-01", pages: 183, publisher: "Parnassus Press",
		genres: []string{"Fantasy", "Classics"},
	},
	{
		title: "Pride and Prejudice", author: "Jane Austen", isbn: "9780141439518",
		published: "1813-01-28", pages: 480, publisher: "Penguin Classics",
		genres: []string{"Classics"},
		reviews: []reviewDef{
			{5, "Ada", "Sharp, funny and warm."},
			{4, "Barbara", ""},
		},
	},
	{
		title: "Murder on the Orient Express", author: "Agatha Christie", isbn: "9780062693662",
		published: "1934-01-01", pages: 274, publisher: "William Morrow",
		genres:  []string{"Mystery", "Classics"},
		reviews: []reviewDef{{4, "Grace", "The ending still surprises."}},
	},
}

// Run creates every missing entity. Reviews are only added to books created
// by this run, so re-running does not duplicate them.
func Run(ctx context.Context, c Catalog, logger *slog.Logger) (Result, error) {
	var res Result

	genreIDs, err := seedGenres(ctx, c, &res)
	if err != nil {
		return res, err
	}
	authorIDs, err := seedAuthors(ctx, c, &res)
	if err != nil {
		return res, err
	}
	if err := seedBooks(ctx, c, authorIDs, genreIDs, &res); err != nil {
		return res, err
	}

	logger.InfoContext(ctx, "catalog seeded",
		slog.Int("authors", res.Authors),
		slog.Int("genres", res.Genres),
		slog.Int("books", res.Books),
		slog.Int("reviews", res.Reviews),
	)
	return res, nil
}

func seedGenres(ctx context.Context, c Catalog, res *Result) (map[string]int64, error) {
	existing, err := c.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	ids := make(map[string]int64, len(genres))
	for _, g := range existing {
		ids[g.Name] = g.ID
	}

	for _, def := range genres {
		if _, ok := ids[def.name]; ok {
			continue
		}
		g, err := c.AddGenre(ctx, service.AddGenreInput{Name: def.name, Description: &def.description})
		if err != nil {
			return nil, fmt.Errorf("add genre %q: %w", def.name, err)
		}
		ids[g.Name] = g.ID
		res.Genres++
	}
	return ids, nil
}

func seedAuthors(ctx context.Context, c Catalog, res *Result) (map[string]int64, error) {
	existing, err := c.Authors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	ids := make(map[string]int64, len(authors))
	for _, a := range existing {
		ids[a.Name] = a.ID
	}

	for _, def := range authors {
		if _, ok := ids[def.name]; ok {
			continue
		}
		born, err := time.Parse(time.DateOnly, def.born)
		if err != nil {
			return nil, fmt.Errorf("parse birth date of %q: %w", def.name, err)
		}
		a, err := c.AddAuthor(ctx, service.AddAuthorInput{
			Name:        def.name,
			Biography:   &def.biography,
			DateOfBirth: &born,
			Nationality: &def.nationality,
		})
		if err != nil {
			return nil, fmt.Errorf("add author %q: %w", def.name, err)
		}
		ids[a.Name] = a.ID
		res.Authors++
	}
	return ids, nil
}

func seedBooks(ctx context.Context, c Catalog, authorIDs, genreIDs map[string]int64, res *Result) error {
	ids := make([]int64, 0, len(authorIDs))
	for _, id := range authorIDs {
		ids = append(ids, id)
	}
	existing, err := c.BooksByAuthorIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	for _, def := range books {
		authorID := authorIDs[def.author]
		if hasTitle(existing[authorID], def.title) {
			continue
		}

		published, err := time.Parse(time.DateOnly, def.published)
		if err != nil {
			return fmt.Errorf("parse publication date of %q: %w", def.title, err)
		}
		in := service.AddBookInput{
			Title:         def.title,
			ISBN:          &def.isbn,
			PublishedDate: &published,
			PageCount:     &def.pages,
			Publisher:     &def.publisher,
			AuthorID:      authorID,
		}
		for _, name := range def.genres {
			in.GenreIDs = append(in.GenreIDs, genreIDs[name])
		}

		b, err := c.AddBook(ctx, in)
		if err != nil {
			return fmt.Errorf("add book %q: %w", def.title, err)
		}
		res.Books++

		for _, rd := range def.reviews {
			rev := service.AddReviewInput{BookID: b.ID, Rating: rd.rating, ReviewerName: rd.reviewer}
			if rd.comment != "" {
				rev.Comment = &rd.comment
			}
			if _, err := c.AddReview(ctx, rev); err != nil {
				return fmt.Errorf("add review of %q: %w", def.title, err)
			}
			res.Reviews++
		}
	}
	return nil
}

func hasTitle(books []domain.Book, title string) bool {
	for _, b := range books {
		if b.Title == title {
			return true
		}
	}
	return false
}
