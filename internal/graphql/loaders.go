package graphql

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/utafrali/LibraryGo/internal/domain"
)

// batchWait is how long a loader collects keys before running its batch.
const batchWait = 5 * time.Millisecond

type loadersKey struct{}

// Loaders batch the relation lookups of one request. A fresh set is created
// for every request; results are only cached within a batch.
type Loaders struct {
	Author        *dataloader.Loader[int64, *domain.Author]
	Book          *dataloader.Loader[int64, *domain.Book]
	ReviewsByBook *dataloader.Loader[int64, []domain.Review]
	GenresByBook  *dataloader.Loader[int64, []domain.Genre]
	BooksByAuthor *dataloader.Loader[int64, []domain.Book]
	BooksByGenre  *dataloader.Loader[int64, []domain.Book]
}

// NewLoaders creates the per-request loaders backed by svc.
func NewLoaders(svc Catalog) *Loaders {
	return &Loaders{
		Author:        newLoader(byPointer(svc.AuthorsByIDs)),
		Book:          newLoader(byPointer(svc.BooksByIDs)),
		ReviewsByBook: newLoader(svc.ReviewsByBookIDs),
		GenresByBook:  newLoader(svc.GenresByBookIDs),
		BooksByAuthor: newLoader(svc.BooksByAuthorIDs),
		BooksByGenre:  newLoader(svc.BooksByGenreIDs),
	}
}

// newLoader adapts a keyed bulk lookup to a dataloader batch function.
// Keys missing from the result resolve to the zero value.
func newLoader[V any](fetch func(context.Context, []int64) (map[int64]V, error)) *dataloader.Loader[int64, V] {
	var batch dataloader.BatchFunc[int64, V] = func(ctx context.Context, keys []int64) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))
		found, err := fetch(ctx, keys)
		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[V]{Error: err}
				continue
			}
			results[i] = &dataloader.Result[V]{Data: found[key]}
		}
		return results
	}
	return dataloader.NewBatchedLoader[int64, V](batch,
		dataloader.WithWait[int64, V](batchWait),
		dataloader.WithClearCacheOnBatch[int64, V](),
	)
}

// byPointer adapts a lookup of single values so that missing keys load as nil.
func byPointer[V any](fetch func(context.Context, []int64) (map[int64]V, error)) func(context.Context, []int64) (map[int64]*V, error) {
	return func(ctx context.Context, ids []int64) (map[int64]*V, error) {
		found, err := fetch(ctx, ids)
		if err != nil {
			return nil, err
		}
		out := make(map[int64]*V, len(found))
		for id, v := range found {
			out[id] = &v
		}
		return out, nil
	}
}

// WithLoaders returns a context carrying l.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey{}, l)
}

// LoadersFromContext returns the loaders stored in ctx, or nil.
func LoadersFromContext(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey{}).(*Loaders)
	return l
}
