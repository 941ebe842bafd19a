package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/domain/port"
)

// GetPrediction is the use case for retrieving a stored prediction.
type GetPrediction struct {
	repo port.PredictionRepository
}

// NewGetPrediction creates a new GetPrediction use case. A nil repo reports
// every prediction as not found.
func NewGetPrediction(repo port.PredictionRepository) *GetPrediction {
	return &GetPrediction{repo: repo}
}

// Execute retrieves a prediction by ID.
func (uc *GetPrediction) Execute(ctx context.Context, req dto.GetPredictionRequest) (dto.PredictionResponse, error) {
	if uc.repo == nil {
		return dto.PredictionResponse{}, fmt.Errorf("prediction %s: %w", req.PredictionID, port.ErrNotFound)
	}

	prediction, err := uc.repo.FindByID(ctx, req.PredictionID)
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to find prediction: %w", err)
	}

	return dto.FromModel(prediction), nil
}

// Default and maximum page sizes for history queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// pageSize clamps a requested page size to (0, MaxPageSize], defaulting to
// DefaultPageSize, and rejects negative offsets.
func pageSize(limit, offset int) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("%w: offset must not be negative", ErrInvalidRequest)
	}
	switch {
	case limit <= 0:
		return DefaultPageSize, nil
	case limit > MaxPageSize:
		return MaxPageSize, nil
	}
	return limit, nil
}

// ListStudentPredictions is the use case for a student's prediction history.
type ListStudentPredictions struct {
	repo port.PredictionRepository
}

// NewListStudentPredictions creates a new ListStudentPredictions use case.
func NewListStudentPredictions(repo port.PredictionRepository) *ListStudentPredictions {
	return &ListStudentPredictions{repo: repo}
}

// Execute returns one page of predictions, newest first.
func (uc *ListStudentPredictions) Execute(ctx context.Context, req dto.ListStudentPredictionsRequest) (dto.ListPredictionsResponse, error) {
	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		return dto.ListPredictionsResponse{}, fmt.Errorf("%w: student_id is required", ErrInvalidRequest)
	}
	limit, err := pageSize(req.Limit, req.Offset)
	if err != nil {
		return dto.ListPredictionsResponse{}, err
	}

	resp := dto.ListPredictionsResponse{
		StudentID:   studentID,
		Limit:       limit,
		Offset:      req.Offset,
		Predictions: []dto.PredictionResponse{},
	}
	if uc.repo == nil {
		return resp, nil
	}

	predictions, err := uc.repo.FindByStudentID(ctx, studentID, limit, req.Offset)
	if err != nil {
		return dto.ListPredictionsResponse{}, fmt.Errorf("failed to list predictions: %w", err)
	}
	for _, p := range predictions {
		resp.Predictions = append(resp.Predictions, dto.FromModel(p))
	}
	return resp, nil
}

// ListPredictions is the use case for browsing every stored prediction.
type ListPredictions struct {
	repo port.PredictionRepository
}

// NewListPredictions creates a new ListPredictions use case.
func NewListPredictions(repo port.PredictionRepository) *ListPredictions {
	return &ListPredictions{repo: repo}
}

// Execute returns one page of predictions, newest first.
func (uc *ListPredictions) Execute(ctx context.Context, req dto.ListPredictionsRequest) (dto.ListPredictionsResponse, error) {
	limit, err := pageSize(req.Limit, req.Offset)
	if err != nil {
		return dto.ListPredictionsResponse{}, err
	}

	resp := dto.ListPredictionsResponse{
		Limit:       limit,
		Offset:      req.Offset,
		Predictions: []dto.PredictionResponse{},
	}
	if uc.repo == nil {
		return resp, nil
	}

	predictions, err := uc.repo.FindRecent(ctx, limit, req.Offset)
	if err != nil {
		return dto.ListPredictionsResponse{}, fmt.Errorf("failed to list predictions: %w", err)
	}
	for _, p := range predictions {
		resp.Predictions = append(resp.Predictions, dto.FromModel(p))
	}
	return resp, nil
}
