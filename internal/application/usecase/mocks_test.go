package usecase_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/acadrisk/acadrisk/internal/domain/model"
	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
	"github.com/acadrisk/acadrisk/internal/infrastructure/ml"
	"github.com/acadrisk/acadrisk/pkg/events"
	"github.com/acadrisk/acadrisk/pkg/observability"
)

// --- Mock implementations ---

type mockPredictionRepository struct {
	saved               []*model.Prediction
	saveFunc            func(ctx context.Context, p *model.Prediction) error
	saveBatchFunc       func(ctx context.Context, ps []*model.Prediction) error
	findByIDFunc        func(ctx context.Context, id uuid.UUID) (*model.Prediction, error)
	findByStudentIDFunc func(ctx context.Context, studentID string, limit, offset int) ([]*model.Prediction, error)
	findRecentFunc      func(ctx context.Context, limit, offset int) ([]*model.Prediction, error)
	findByBatchIDFunc   func(ctx context.Context, batchID uuid.UUID, limit, offset int) ([]*model.Prediction, error)
	summarizeBatchFunc  func(ctx context.Context, batchID uuid.UUID) (model.BatchSummary, error)
	listBatchesFunc     func(ctx context.Context, limit, offset int) ([]model.BatchSummary, error)
	deleteBatchFunc     func(ctx context.Context, batchID uuid.UUID) (int64, error)
}

func (m *mockPredictionRepository) Save(ctx context.Context, p *model.Prediction) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, p)
	}
	m.saved = append(m.saved, p)
	return nil
}

func (m *mockPredictionRepository) SaveBatch(ctx context.Context, ps []*model.Prediction) error {
	if m.saveBatchFunc != nil {
		return m.saveBatchFunc(ctx, ps)
	}
	m.saved = append(m.saved, ps...)
	return nil
}

func (m *mockPredictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Prediction, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, port.ErrNotFound
}

func (m *mockPredictionRepository) FindByStudentID(ctx context.Context, studentID string, limit, offset int) ([]*model.Prediction, error) {
	if m.findByStudentIDFunc != nil {
		return m.findByStudentIDFunc(ctx, studentID, limit, offset)
	}
	return nil, nil
}

func (m *mockPredictionRepository) FindRecent(ctx context.Context, limit, offset int) ([]*model.Prediction, error) {
	if m.findRecentFunc != nil {
		return m.findRecentFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockPredictionRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID, limit, offset int) ([]*model.Prediction, error) {
	if m.findByBatchIDFunc != nil {
		return m.findByBatchIDFunc(ctx, batchID, limit, offset)
	}
	return nil, nil
}

func (m *mockPredictionRepository) SummarizeBatch(ctx context.Context, batchID uuid.UUID) (model.BatchSummary, error) {
	if m.summarizeBatchFunc != nil {
		return m.summarizeBatchFunc(ctx, batchID)
	}
	return model.BatchSummary{}, port.ErrNotFound
}

func (m *mockPredictionRepository) ListBatches(ctx context.Context, limit, offset int) ([]model.BatchSummary, error) {
	if m.listBatchesFunc != nil {
		return m.listBatchesFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockPredictionRepository) DeleteBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	if m.deleteBatchFunc != nil {
		return m.deleteBatchFunc(ctx, batchID)
	}
	return 0, port.ErrNotFound
}

type mockEventPublisher struct {
	published   []events.DomainEvent
	publishFunc func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.published = append(m.published, evts...)
	return nil
}

func (m *mockEventPublisher) types() []string {
	out := make([]string, len(m.published))
	for i, e := range m.published {
		out[i] = e.EventType()
	}
	return out
}

type mockCache struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, port.ErrNotFound
	}
	return v, nil
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func plainKey(checksum string, row valueobject.FeatureRow) (string, error) {
	data, err := row.MarshalJSON()
	return checksum + string(data), err
}

// stubOracle returns a fixed fail probability with ordering [0, 1].
type stubOracle struct {
	ordering valueobject.ClassOrdering
	probaErr error
	failProb float64
	calls    int
}

func newStubOracle(failProb float64) *stubOracle {
	return &stubOracle{
		failProb: failProb,
		ordering: valueobject.ClassOrdering{valueobject.NumericClass(0), valueobject.NumericClass(1)},
	}
}

func (s *stubOracle) PredictProba(rows []valueobject.FeatureRow) ([][]float64, error) {
	s.calls++
	if s.probaErr != nil {
		return nil, s.probaErr
	}
	out := make([][]float64, len(rows))
	for i := range rows {
		out[i] = []float64{s.failProb, 1 - s.failProb}
	}
	return out, nil
}

func (s *stubOracle) Predict(rows []valueobject.FeatureRow) ([]valueobject.ClassLabel, error) {
	out := make([]valueobject.ClassLabel, len(rows))
	for i := range rows {
		if s.failProb >= 0.5 {
			out[i] = valueobject.NumericClass(0)
		} else {
			out[i] = valueobject.NumericClass(1)
		}
	}
	return out, nil
}

func (s *stubOracle) ClassOrdering() valueobject.ClassOrdering { return s.ordering }
func (s *stubOracle) IsFallback() bool                         { return false }

func (s *stubOracle) Schema() valueobject.Schema {
	return ml.TrainingSchema([]string{"high", "low", "medium"})
}

func (s *stubOracle) Describe() port.Descriptor {
	return port.Descriptor{Kind: "stub", Checksum: "abc123", Trees: 3, MaxDepth: 4}
}

func heuristicPredictor() *service.Predictor {
	return service.NewPredictor(ml.NewHeuristic("./model.json"), observability.Discard())
}

func stubPredictor(o *stubOracle) *service.Predictor {
	return service.NewPredictor(o, observability.Discard())
}

var errBoom = errors.New("boom")
