package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/acadrisk/acadrisk/internal/domain/model"
	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
	pgutil "github.com/acadrisk/acadrisk/pkg/postgres"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pgutil.Querier
	pgutil.TxBeginner
}

// PredictionRepository implements port.PredictionRepository using PostgreSQL.
type PredictionRepository struct {
	db DB
}

// NewPredictionRepository creates a new PostgreSQL-backed prediction repository.
func NewPredictionRepository(db DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

const insertPrediction = `
	INSERT INTO predictions (
		id, student_id, batch_id, input_features,
		predicted_label, risk_category, risk_score,
		feature_importance, degraded, oracle_kind, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO NOTHING
`

const selectPrediction = `
	SELECT id, student_id, batch_id, input_features,
		predicted_label, risk_category, risk_score,
		feature_importance, degraded, oracle_kind, created_at
	FROM predictions
`

// Save persists a single prediction.
func (r *PredictionRepository) Save(ctx context.Context, prediction *model.Prediction) error {
	if err := insert(ctx, r.db, prediction); err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// SaveBatch persists all predictions in one transaction.
func (r *PredictionRepository) SaveBatch(ctx context.Context, predictions []*model.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		for i, p := range predictions {
			if err := insert(ctx, tx, p); err != nil {
				return fmt.Errorf("failed to save batch prediction %d: %w", i, err)
			}
		}
		return nil
	})
}

// FindByID retrieves a prediction by its unique identifier.
func (r *PredictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Prediction, error) {
	prediction, err := scanPrediction(r.db.QueryRow(ctx, selectPrediction+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("prediction %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find prediction: %w", err)
	}
	return prediction, nil
}

// FindByStudentID retrieves a student's predictions, newest first.
func (r *PredictionRepository) FindByStudentID(ctx context.Context, studentID string, limit, offset int) ([]*model.Prediction, error) {
	return r.query(ctx,
		selectPrediction+` WHERE student_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		studentID, limit, offset,
	)
}

// FindRecent retrieves all predictions, newest first.
func (r *PredictionRepository) FindRecent(ctx context.Context, limit, offset int) ([]*model.Prediction, error) {
	return r.query(ctx,
		selectPrediction+` ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
}

// FindByBatchID retrieves the predictions of a batch in scoring order.
func (r *PredictionRepository) FindByBatchID(ctx context.Context, batchID uuid.UUID, limit, offset int) ([]*model.Prediction, error) {
	return r.query(ctx,
		selectPrediction+` WHERE batch_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`,
		batchID, limit, offset,
	)
}

const selectBatchSummary = `
	SELECT batch_id,
		COUNT(*),
		COUNT(*) FILTER (WHERE risk_category = 'low'),
		COUNT(*) FILTER (WHERE risk_category = 'medium'),
		COUNT(*) FILTER (WHERE risk_category = 'high'),
		MIN(created_at)
	FROM predictions
`

// SummarizeBatch counts a batch's predictions by category.
func (r *PredictionRepository) SummarizeBatch(ctx context.Context, batchID uuid.UUID) (model.BatchSummary, error) {
	summary, err := scanBatchSummary(r.db.QueryRow(ctx,
		selectBatchSummary+` WHERE batch_id = $1 GROUP BY batch_id`, batchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.BatchSummary{}, fmt.Errorf("batch %s: %w", batchID, port.ErrNotFound)
	}
	if err != nil {
		return model.BatchSummary{}, fmt.Errorf("failed to summarize batch: %w", err)
	}
	return summary, nil
}

// ListBatches summarizes stored batches, newest first.
func (r *PredictionRepository) ListBatches(ctx context.Context, limit, offset int) ([]model.BatchSummary, error) {
	rows, err := r.db.Query(ctx,
		selectBatchSummary+` WHERE batch_id IS NOT NULL GROUP BY batch_id
		ORDER BY MIN(created_at) DESC, batch_id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.BatchSummary, 0)
	for rows.Next() {
		summary, err := scanBatchSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate batches: %w", err)
	}
	return summaries, nil
}

// DeleteBatch removes every prediction of a batch.
func (r *PredictionRepository) DeleteBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM predictions WHERE batch_id = $1`, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("batch %s: %w", batchID, port.ErrNotFound)
	}
	return tag.RowsAffected(), nil
}

func (r *PredictionRepository) query(ctx context.Context, sql string, args ...any) ([]*model.Prediction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]*model.Prediction, 0)
	for rows.Next() {
		prediction, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		predictions = append(predictions, prediction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return predictions, nil
}

func insert(ctx context.Context, q pgutil.Querier, p *model.Prediction) error {
	features, err := json.Marshal(p.InputFeatures())
	if err != nil {
		return fmt.Errorf("failed to encode input features: %w", err)
	}
	importance, err := json.Marshal(p.FeatureImportance())
	if err != nil {
		return fmt.Errorf("failed to encode feature importance: %w", err)
	}

	_, err = q.Exec(ctx, insertPrediction,
		p.ID(),
		nullString(p.StudentID()),
		nullUUID(p.BatchID()),
		features,
		p.Label().String(),
		p.Category().String(),
		p.RiskScore(),
		importance,
		p.Degraded(),
		p.OracleKind(),
		p.CreatedAt(),
	)
	return err
}

func scanPrediction(row pgx.Row) (*model.Prediction, error) {
	var (
		id            uuid.UUID
		studentID     *string
		batchID       *uuid.UUID
		featuresJSON  []byte
		labelStr      string
		categoryStr   string
		riskScore     float64
		importanceRaw []byte
		degraded      bool
		oracleKind    string
		createdAt     time.Time
	)

	err := row.Scan(
		&id, &studentID, &batchID, &featuresJSON,
		&labelStr, &categoryStr, &riskScore,
		&importanceRaw, &degraded, &oracleKind, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	var features valueobject.FeatureRow
	if err := json.Unmarshal(featuresJSON, &features); err != nil {
		return nil, fmt.Errorf("failed to decode input features: %w", err)
	}

	var importance map[string]float64
	if err := json.Unmarshal(importanceRaw, &importance); err != nil {
		return nil, fmt.Errorf("failed to decode feature importance: %w", err)
	}

	label, err := valueobject.PredictedLabelFromString(labelStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse predicted label: %w", err)
	}

	category, err := valueobject.RiskCategoryFromString(categoryStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk category: %w", err)
	}

	var student string
	if studentID != nil {
		student = *studentID
	}
	var batch uuid.UUID
	if batchID != nil {
		batch = *batchID
	}

	return model.Reconstruct(
		id, student, batch, features,
		label, category, riskScore,
		importance, degraded, oracleKind, createdAt,
	), nil
}

func scanBatchSummary(row pgx.Row) (model.BatchSummary, error) {
	var s model.BatchSummary
	err := row.Scan(&s.BatchID, &s.Total, &s.Low, &s.Medium, &s.High, &s.CreatedAt)
	return s, err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

var _ port.PredictionRepository = (*PredictionRepository)(nil)
