package port

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/acadrisk/acadrisk/internal/domain/model"
	"github.com/acadrisk/acadrisk/pkg/events"
)

// ErrNotFound is returned by repositories and caches for missing entries.
var ErrNotFound = errors.New("not found")

// PredictionRepository defines the persistence port for predictions.
type PredictionRepository interface {
	// Save persists a single prediction.
	Save(ctx context.Context, prediction *model.Prediction) error

	// SaveBatch persists all predictions of a batch atomically.
	SaveBatch(ctx context.Context, predictions []*model.Prediction) error

	// FindByID retrieves a prediction by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Prediction, error)

	// FindByStudentID retrieves a student's predictions, newest first.
	FindByStudentID(ctx context.Context, studentID string, limit, offset int) ([]*model.Prediction, error)

	// FindRecent retrieves all predictions, newest first.
	FindRecent(ctx context.Context, limit, offset int) ([]*model.Prediction, error)

	// FindByBatchID retrieves the predictions of a batch in scoring order.
	FindByBatchID(ctx context.Context, batchID uuid.UUID, limit, offset int) ([]*model.Prediction, error)

	// SummarizeBatch counts a batch's predictions by category. It returns
	// ErrNotFound when the batch has no stored predictions.
	SummarizeBatch(ctx context.Context, batchID uuid.UUID) (model.BatchSummary, error)

	// ListBatches summarizes stored batches, newest first.
	ListBatches(ctx context.Context, limit, offset int) ([]model.BatchSummary, error)

	// DeleteBatch removes every prediction of a batch and reports how many
	// were removed. It returns ErrNotFound when nothing matched.
	DeleteBatch(ctx context.Context, batchID uuid.UUID) (int64, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// PredictionCache stores serialized single-prediction results by key.
type PredictionCache interface {
	// Get returns the cached value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
