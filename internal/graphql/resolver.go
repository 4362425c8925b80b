package graphql

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
	"github.com/utafrali/LibraryGo/internal/service"
	apperrors "github.com/utafrali/LibraryGo/pkg/errors"
	"github.com/utafrali/LibraryGo/pkg/pagination"
	"github.com/utafrali/LibraryGo/pkg/validator"
)

// Catalog is the set of catalog operations the API exposes. *service.Service
// implements it.
type Catalog interface {
	AddAuthor(ctx context.Context, in service.AddAuthorInput) (*domain.Author, error)
	UpdateAuthor(ctx context.Context, in service.UpdateAuthorInput) (*domain.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
	Author(ctx context.Context, id int64) (*domain.Author, error)
	Authors(ctx context.Context) ([]domain.Author, error)
	AuthorsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Author, error)

	AddBook(ctx context.Context, in service.AddBookInput) (*domain.Book, error)
	UpdateBook(ctx context.Context, in service.UpdateBookInput) (*domain.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	Book(ctx context.Context, id int64) (*domain.Book, error)
	Books(ctx context.Context, filter repository.BookFilter, page pagination.Params) (pagination.Result[domain.Book], error)
	BooksByIDs(ctx context.Context, ids []int64) (map[int64]domain.Book, error)
	BooksByAuthorIDs(ctx context.Context, authorIDs []int64) (map[int64][]domain.Book, error)
	BooksByGenreIDs(ctx context.Context, genreIDs []int64) (map[int64][]domain.Book, error)

	AddGenre(ctx context.Context, in service.AddGenreInput) (*domain.Genre, error)
	DeleteGenre(ctx context.Context, id int64) error
	Genre(ctx context.Context, id int64) (*domain.Genre, error)
	Genres(ctx context.Context) ([]domain.Genre, error)
	GenresByBookIDs(ctx context.Context, bookIDs []int64) (map[int64][]domain.Genre, error)

	AddReview(ctx context.Context, in service.AddReviewInput) (*domain.Review, error)
	UpdateReview(ctx context.Context, in service.UpdateReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, id int64) error
	Review(ctx context.Context, id int64) (*domain.Review, error)
	Reviews(ctx context.Context, bookID *int64) ([]domain.Review, error)
	ReviewsByBookIDs(ctx context.Context, bookIDs []int64) (map[int64][]domain.Review, error)
}

// Resolver resolves the fields of the catalog schema.
type Resolver struct {
	svc    Catalog
	logger *slog.Logger
}

// NewResolver creates a resolver backed by svc.
func NewResolver(svc Catalog, logger *slog.Logger) *Resolver {
	return &Resolver{svc: svc, logger: logger}
}

// --- Queries ---

func (r *Resolver) books(p graphql.ResolveParams) (any, error) {
	filter := repository.BookFilter{
		Search:   optString(p.Args, "search"),
		AuthorID: optID(p.Args, "authorId"),
		GenreID:  optID(p.Args, "genreId"),
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) == "" {
		filter.Search = nil
	}
	page := pagination.New(optInt(p.Args, "page"), optInt(p.Args, "perPage"))

	result, err := r.svc.Books(p.Context, filter, page)
	if err != nil {
		return nil, r.toError(p.Context, err)
	}
	return &result, nil
}

func (r *Resolver) book(p graphql.ResolveParams) (any, error) {
	return r.lookup(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.Book(ctx, argID(p.Args, "id"))
	})
}

func (r *Resolver) authors(p graphql.ResolveParams) (any, error) {
	authors, err := r.svc.Authors(p.Context)
	if err != nil {
		return nil, r.toError(p.Context, err)
	}
	return ptrs(authors), nil
}

func (r *Resolver) author(p graphql.ResolveParams) (any, error) {
	return r.lookup(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.Author(ctx, argID(p.Args, "id"))
	})
}

func (r *Resolver) genres(p graphql.ResolveParams) (any, error) {
	genres, err := r.svc.Genres(p.Context)
	if err != nil {
		return nil, r.toError(p.Context, err)
	}
	return ptrs(genres), nil
}

func (r *Resolver) genre(p graphql.ResolveParams) (any, error) {
	return r.lookup(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.Genre(ctx, argID(p.Args, "id"))
	})
}

func (r *Resolver) reviews(p graphql.ResolveParams) (any, error) {
	reviews, err := r.svc.Reviews(p.Context, optID(p.Args, "bookId"))
	if err != nil {
		return nil, r.toError(p.Context, err)
	}
	return ptrs(reviews), nil
}

func (r *Resolver) review(p graphql.ResolveParams) (any, error) {
	return r.lookup(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.Review(ctx, argID(p.Args, "id"))
	})
}

// lookup runs a single-entity read. Unknown ids resolve to null.
func (r *Resolver) lookup(ctx context.Context, get func(context.Context) (any, error)) (any, error) {
	v, err := get(ctx)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.toError(ctx, err)
	}
	return v, nil
}

// --- Mutations ---

func (r *Resolver) addAuthor(p graphql.ResolveParams) (any, error) {
	var req addAuthorRequest
	if err := validator.DecodeAndValidate(p.Args["input"], &req); err != nil {
		return nil, r.toError(p.Context, err)
	}
	return r.mutate(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.AddAuthor(ctx, req.input())
	})
}

func (r *Resolver) updateAuthor(p graphql.ResolveParams) (any, error) {
	var req updateAuthorRequest
	if err := validator.DecodeAndValidate(p.Args["input"], &req); err != nil {
		return nil, r.toError(p.Context, err)
	}
	return r.mutate(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.UpdateAuthor(ctx, req.input())
	})
}

func (r *Resolver) deleteAuthor(p graphql.ResolveParams) (any, error) {
	return r.remove(p.Context, argID(p.Args, "id"), r.svc.DeleteAuthor)
}

func (r *Resolver) addBook(p graphql.ResolveParams) (any, error) {
	var req addBookRequest
	if err := validator.DecodeAndValidate(p.Args["input"], &req); err != nil {
		return nil, r.toError(p.Context, err)
	}
	return r.mutate(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.AddBook(ctx, req.input())
	})
}

func (r *Resolver) updateBook(p graphql.ResolveParams) (any, error) {
	var req updateBookRequest
	if err := validator.DecodeAndValidate(p.Args["input"], &req); err != nil {
		return nil, r.toError(p.Context, err)
	}
	return r.mutate(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.UpdateBook(ctx, req.input())
	})
}

func (r *Resolver) deleteBook(p graphql.ResolveParams) (any, error) {
	return r.remove(p.Context, argID(p.Args, "id"), r.svc.DeleteBook)
}

func (r *Resolver) addGenre(p graphql.ResolveParams) (any, error) {
	var req addGenreRequest
	if err := validator.DecodeAndValidate(p.Args["input"], &req); err != nil {
		return nil, r.toError(p.Context, err)
	}
	return r.mutate(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.AddGenre(ctx, req.input())
	})
}

func (r *Resolver) deleteGenre(p graphql.ResolveParams) (any, error) {
	return r.remove(p.Context, argID(p.Args, "id"), r.svc.DeleteGenre)
}

func (r *Resolver) addReview(p graphql.ResolveParams) (any, error) {
	var req addReviewRequest
	if err := validator.DecodeAndValidate(p.Args["input"], &req); err != nil {
		return nil, r.toError(p.Context, err)
	}
	return r.mutate(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.AddReview(ctx, req.input())
	})
}

func (r *Resolver) updateReview(p graphql.ResolveParams) (any, error) {
	var req updateReviewRequest
	if err := validator.DecodeAndValidate(p.Args["input"], &req); err != nil {
		return nil, r.toError(p.Context, err)
	}
	return r.mutate(p.Context, func(ctx context.Context) (any, error) {
		return r.svc.UpdateReview(ctx, req.input())
	})
}

func (r *Resolver) deleteReview(p graphql.ResolveParams) (any, error) {
	return r.remove(p.Context, argID(p.Args, "id"), r.svc.DeleteReview)
}

func (r *Resolver) mutate(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	v, err := fn(ctx)
	if err != nil {
		return nil, r.toError(ctx, err)
	}
	return v, nil
}

func (r *Resolver) remove(ctx context.Context, id int64, del func(context.Context, int64) error) (any, error) {
	if err := del(ctx, id); err != nil {
		return nil, r.toError(ctx, err)
	}
	return true, nil
}

// --- Relations ---
//
// Relation fields return thunks so that sibling lookups queue on the same
// loader batch before any of them is awaited.

func (r *Resolver) bookAuthor(p graphql.ResolveParams) (any, error) {
	b := p.Source.(*domain.Book)
	thunk := r.loaders(p.Context).Author.Load(p.Context, b.AuthorID)
	return func() (any, error) {
		a, err := thunk()
		if err != nil {
			return nil, r.toError(p.Context, err)
		}
		if a == nil {
			return nil, nil
		}
		return a, nil
	}, nil
}

func (r *Resolver) bookGenres(p graphql.ResolveParams) (any, error) {
	b := p.Source.(*domain.Book)
	return resolveMany(r, p.Context, r.loaders(p.Context).GenresByBook.Load(p.Context, b.ID), ptrs[domain.Genre])
}

func (r *Resolver) bookReviews(p graphql.ResolveParams) (any, error) {
	b := p.Source.(*domain.Book)
	return resolveMany(r, p.Context, r.loaders(p.Context).ReviewsByBook.Load(p.Context, b.ID), ptrs[domain.Review])
}

func (r *Resolver) bookAverageRating(p graphql.ResolveParams) (any, error) {
	b := p.Source.(*domain.Book)
	return resolveMany(r, p.Context, r.loaders(p.Context).ReviewsByBook.Load(p.Context, b.ID), func(reviews []domain.Review) any {
		if avg := domain.AverageRating(reviews); avg != nil {
			return *avg
		}
		return nil
	})
}

func (r *Resolver) bookReviewCount(p graphql.ResolveParams) (any, error) {
	b := p.Source.(*domain.Book)
	return resolveMany(r, p.Context, r.loaders(p.Context).ReviewsByBook.Load(p.Context, b.ID), count[domain.Review])
}

func (r *Resolver) authorBooks(p graphql.ResolveParams) (any, error) {
	a := p.Source.(*domain.Author)
	return resolveMany(r, p.Context, r.loaders(p.Context).BooksByAuthor.Load(p.Context, a.ID), ptrs[domain.Book])
}

func (r *Resolver) authorBookCount(p graphql.ResolveParams) (any, error) {
	a := p.Source.(*domain.Author)
	return resolveMany(r, p.Context, r.loaders(p.Context).BooksByAuthor.Load(p.Context, a.ID), count[domain.Book])
}

func (r *Resolver) genreBooks(p graphql.ResolveParams) (any, error) {
	g := p.Source.(*domain.Genre)
	return resolveMany(r, p.Context, r.loaders(p.Context).BooksByGenre.Load(p.Context, g.ID), ptrs[domain.Book])
}

func (r *Resolver) genreBookCount(p graphql.ResolveParams) (any, error) {
	g := p.Source.(*domain.Genre)
	return resolveMany(r, p.Context, r.loaders(p.Context).BooksByGenre.Load(p.Context, g.ID), count[domain.Book])
}

func (r *Resolver) reviewBook(p graphql.ResolveParams) (any, error) {
	rv := p.Source.(*domain.Review)
	thunk := r.loaders(p.Context).Book.Load(p.Context, rv.BookID)
	return func() (any, error) {
		b, err := thunk()
		if err != nil {
			return nil, r.toError(p.Context, err)
		}
		if b == nil {
			return nil, nil
		}
		return b, nil
	}, nil
}

// loaders returns the request loaders, creating unshared ones when the
// request did not install any.
func (r *Resolver) loaders(ctx context.Context) *Loaders {
	if l := LoadersFromContext(ctx); l != nil {
		return l
	}
	return NewLoaders(r.svc)
}

func resolveMany[V any](r *Resolver, ctx context.Context, thunk func() (V, error), shape func(V) any) (any, error) {
	return func() (any, error) {
		v, err := thunk()
		if err != nil {
			return nil, r.toError(ctx, err)
		}
		return shape(v), nil
	}, nil
}

// --- Argument helpers ---

func argID(args map[string]any, name string) int64 {
	v, _ := args[name].(int)
	return int64(v)
}

func optID(args map[string]any, name string) *int64 {
	v, ok := args[name].(int)
	if !ok {
		return nil
	}
	id := int64(v)
	return &id
}

func optInt(args map[string]any, name string) *int {
	v, ok := args[name].(int)
	if !ok {
		return nil
	}
	return &v
}

func optString(args map[string]any, name string) *string {
	v, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &v
}

func ptrs[T any](items []T) any {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

func count[T any](items []T) any { return len(items) }
