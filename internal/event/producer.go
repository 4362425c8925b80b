package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/utafrali/LibraryGo/internal/domain"
	"github.com/utafrali/LibraryGo/pkg/breaker"
	pkgkafka "github.com/utafrali/LibraryGo/pkg/kafka"
)

// Kafka topic constants for catalog events.
const (
	TopicBookCreated   = "library.book.created"
	TopicReviewCreated = "library.review.created"
)

// Event types carried in the envelope. Subscribers filter on these.
const (
	TypeBookCreated   = "book.created"
	TypeReviewCreated = "review.created"
)

// Aggregate type constants.
const (
	AggregateTypeBook   = "book"
	AggregateTypeReview = "review"
)

// SourceLibraryService identifies events originating from this service.
const SourceLibraryService = "library-service"

// BookCreatedData is the payload for a book.created event.
type BookCreatedData struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	ISBN     *string `json:"isbn,omitempty"`
	Language string  `json:"language"`
	AuthorID int64   `json:"author_id"`
	GenreIDs []int64 `json:"genre_ids"`
}

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID           int64     `json:"id"`
	BookID       int64     `json:"book_id"`
	Rating       int       `json:"rating"`
	ReviewerName string    `json:"reviewer_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Publisher sends an event envelope to a topic. *pkgkafka.Producer
// implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog events to Kafka through a circuit breaker.
type Producer struct {
	kafka   Publisher
	breaker *breaker.Breaker[struct{}]
	logger  *slog.Logger
}

// NewProducer creates a new event producer. A nil breaker gets the default
// "kafka-producer" configuration.
func NewProducer(kafka Publisher, cb *breaker.Breaker[struct{}], logger *slog.Logger) *Producer {
	if cb == nil {
		cb = breaker.New[struct{}](breaker.DefaultConfig("kafka-producer"), logger)
	}
	return &Producer{
		kafka:   kafka,
		breaker: cb,
		logger:  logger,
	}
}

// BookCreated publishes a book.created event.
func (p *Producer) BookCreated(ctx context.Context, book *domain.Book) error {
	genres := book.Genres()
	genreIDs := make([]int64, 0, len(genres))
	for _, g := range genres {
		genreIDs = append(genreIDs, g.ID)
	}
	data := BookCreatedData{
		ID:       book.ID,
		Title:    book.Title,
		ISBN:     book.ISBN,
		Language: book.Language,
		AuthorID: book.AuthorID,
		GenreIDs: genreIDs,
	}

	if err := p.publish(ctx, TopicBookCreated, TypeBookCreated, book.ID, AggregateTypeBook, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published book.created event",
		slog.Int64("book_id", book.ID),
		slog.Int64("author_id", book.AuthorID),
	)
	return nil
}

// ReviewCreated publishes a review.created event.
func (p *Producer) ReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:           review.ID,
		BookID:       review.BookID,
		Rating:       review.Rating,
		ReviewerName: review.ReviewerName,
		CreatedAt:    review.CreatedAt,
	}

	if err := p.publish(ctx, TopicReviewCreated, TypeReviewCreated, review.ID, AggregateTypeReview, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.Int64("review_id", review.ID),
		slog.Int64("book_id", review.BookID),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, eventType string, id int64, aggregateType string, data any) error {
	event, err := pkgkafka.NewEventFromContext(ctx, eventType, strconv.FormatInt(id, 10), aggregateType, SourceLibraryService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	_, err = p.breaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.kafka.Publish(ctx, topic, event)
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}
