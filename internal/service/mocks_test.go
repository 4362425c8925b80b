package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/internal/repository"
	"github.com/utafrali/LibraryGo/pkg/pagination"
)

// --- Mock Store ---

type mockStore struct {
	authors *mockAuthorRepository
	books   *mockBookRepository
	genres  *mockGenreRepository
	reviews *mockReviewRepository
	txCount int
}

func newMockStore() *mockStore {
	return &mockStore{
		authors: &mockAuthorRepository{},
		books:   &mockBookRepository{},
		genres:  &mockGenreRepository{},
		reviews: &mockReviewRepository{},
	}
}

func (m *mockStore) Authors() repository.AuthorRepository { return m.authors }
func (m *mockStore) Books() repository.BookRepository     { return m.books }
func (m *mockStore) Genres() repository.GenreRepository   { return m.genres }
func (m *mockStore) Reviews() repository.ReviewRepository { return m.reviews }

func (m *mockStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	m.txCount++
	return fn(m)
}

// --- Mock Repositories ---

type mockAuthorRepository struct {
	mock.Mock
}

func (m *mockAuthorRepository) Create(ctx context.Context, a *domain.Author) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAuthorRepository) GetByID(ctx context.Context, id int64) (*domain.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Author), args.Error(1)
}

func (m *mockAuthorRepository) List(ctx context.Context) ([]domain.Author, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Author), args.Error(1)
}

func (m *mockAuthorRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Author, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Author), args.Error(1)
}

func (m *mockAuthorRepository) Update(ctx context.Context, a *domain.Author) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAuthorRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockBookRepository struct {
	mock.Mock
}

func (m *mockBookRepository) Create(ctx context.Context, b *domain.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepository) List(ctx context.Context, filter repository.BookFilter, page pagination.Params) ([]domain.Book, int, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]domain.Book), args.Int(1), args.Error(2)
}

func (m *mockBookRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Book), args.Error(1)
}

func (m *mockBookRepository) ListByAuthorIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Book), args.Error(1)
}

func (m *mockBookRepository) ListByGenreIDs(ctx context.Context, ids []int64) (map[int64][]domain.Book, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64][]domain.Book), args.Error(1)
}

func (m *mockBookRepository) ISBNTaken(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	args := m.Called(ctx, isbn, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBookRepository) Update(ctx context.Context, b *domain.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockBookRepository) SetGenres(ctx context.Context, bookID int64, genreIDs []int64) error {
	args := m.Called(ctx, bookID, genreIDs)
	return args.Error(0)
}

func (m *mockBookRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockGenreRepository struct {
	mock.Mock
}

func (m *mockGenreRepository) Create(ctx context.Context, g *domain.Genre) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *mockGenreRepository) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Genre), args.Error(1)
}

func (m *mockGenreRepository) List(ctx context.Context) ([]domain.Genre, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Genre), args.Error(1)
}

func (m *mockGenreRepository) ListByIDs(ctx context.Context, ids []int64) ([]domain.Genre, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Genre), args.Error(1)
}

func (m *mockGenreRepository) ListByBookIDs(ctx context.Context, ids []int64) (map[int64][]domain.Genre, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[int64][]domain.Genre), args.Error(1)
}

func (m *mockGenreRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) List(ctx context.Context, bookID *int64) ([]domain.Review, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByBookIDs(ctx context.Context, ids []int64) ([]domain.Review, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Update(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Notifier ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookCreated(ctx context.Context, b *domain.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockNotifier) ReviewCreated(ctx context.Context, r *domain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// --- Test Helpers ---

var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.FixedZone("EET", 2*3600))

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(store repository.Store, notifier Notifier) *Service {
	return New(store, notifier, newTestLogger()).WithClock(func() time.Time { return fixedNow })
}

func (m *mockStore) assertExpectations(t mock.TestingT) {
	m.authors.AssertExpectations(t)
	m.books.AssertExpectations(t)
	m.genres.AssertExpectations(t)
	m.reviews.AssertExpectations(t)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }
