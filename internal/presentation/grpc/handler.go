package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/pkg/auth"
)

// requireRole checks that the caller has at least one of the given roles.
// Calls without claims pass, so the check only applies when auth is enabled.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	if claims.HasAnyRole(roles...) {
		return nil
	}
	return status.Error(codes.PermissionDenied, "insufficient permissions")
}

// toStatus maps use case errors to gRPC status errors.
func toStatus(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrSchemaMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrInferenceFailure):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// Compile-time assertion that PredictionServiceHandler implements PredictionServiceServer.
var _ PredictionServiceServer = (*PredictionServiceHandler)(nil)

// PredictionServiceHandler implements the gRPC PredictionServiceServer interface.
type PredictionServiceHandler struct {
	UnimplementedPredictionServiceServer
	predictSingle *usecase.PredictSingle
	predictBatch  *usecase.PredictBatch
	modelStatus   *usecase.ModelStatus
	logger        *slog.Logger
}

// NewPredictionServiceHandler creates a new gRPC handler.
func NewPredictionServiceHandler(
	predictSingle *usecase.PredictSingle,
	predictBatch *usecase.PredictBatch,
	modelStatus *usecase.ModelStatus,
	logger *slog.Logger,
) *PredictionServiceHandler {
	return &PredictionServiceHandler{
		predictSingle: predictSingle,
		predictBatch:  predictBatch,
		modelStatus:   modelStatus,
		logger:        logger,
	}
}

// Proto-aligned request/response message types.

// PredictSingleRequest represents the proto PredictSingleRequest message.
type PredictSingleRequest struct {
	Features  map[string]any `json:"features"`
	StudentID string         `json:"student_id"`
}

// PredictionMsg represents the proto Prediction message.
type PredictionMsg struct {
	FeatureImportance map[string]float64 `json:"feature_importance"`
	InputFeatures     json.RawMessage    `json:"input_features,omitempty"`
	ID                string             `json:"id"`
	StudentID         string             `json:"student_id,omitempty"`
	BatchID           string             `json:"batch_id,omitempty"`
	PredictedLabel    string             `json:"predicted_label"`
	RiskCategory      string             `json:"risk_category"`
	RiskScore         float64            `json:"risk_score"`
	Degraded          bool               `json:"degraded"`
}

// PredictSingleResponse represents the proto PredictSingleResponse message.
type PredictSingleResponse struct {
	Prediction *PredictionMsg `json:"prediction"`
}

// PredictBatchRequest represents the proto PredictBatchRequest message.
type PredictBatchRequest struct {
	BatchID string           `json:"batch_id"`
	Records []map[string]any `json:"records"`
}

// PredictBatchResponse represents the proto PredictBatchResponse message.
type PredictBatchResponse struct {
	BatchID     string           `json:"batch_id"`
	Predictions []*PredictionMsg `json:"predictions"`
}

// GetModelStatusRequest represents the proto GetModelStatusRequest message.
type GetModelStatusRequest struct{}

// ModelStatusMsg represents the proto ModelStatus message. FailIndex is -1
// when the class ordering could not be resolved.
type ModelStatusMsg struct {
	Categories          map[string][]string `json:"categories,omitempty"`
	ClassOrdering       []string            `json:"class_ordering"`
	NumericFeatures     []string            `json:"numeric_features"`
	CategoricalFeatures []string            `json:"categorical_features"`
	Source              string              `json:"source"`
	Kind                string              `json:"kind"`
	Checksum            string              `json:"checksum,omitempty"`
	SchemaError         string              `json:"schema_error,omitempty"`
	FailIndex           int32               `json:"fail_index"`
	IsFallback          bool                `json:"is_fallback"`
	ArtifactExists      bool                `json:"artifact_exists"`
}

// GetModelStatusResponse represents the proto GetModelStatusResponse message.
type GetModelStatusResponse struct {
	Status *ModelStatusMsg `json:"status"`
}

func toPredictionMsg(p dto.PredictionResponse) *PredictionMsg {
	msg := &PredictionMsg{
		ID:                p.ID,
		StudentID:         p.StudentID,
		BatchID:           p.BatchID,
		PredictedLabel:    p.PredictedLabel,
		RiskCategory:      p.RiskCategory,
		RiskScore:         p.RiskScore,
		FeatureImportance: p.FeatureImportance,
		Degraded:          p.Degraded,
	}
	if p.InputFeatures != nil {
		if data, err := p.InputFeatures.MarshalJSON(); err == nil {
			msg.InputFeatures = data
		}
	}
	return msg
}

// PredictSingle handles a single prediction request.
func (h *PredictionServiceHandler) PredictSingle(ctx context.Context, req *PredictSingleRequest) (*PredictSingleResponse, error) {
	if req == nil || req.Features == nil {
		return nil, status.Error(codes.InvalidArgument, "features are required")
	}

	result, err := h.predictSingle.Execute(ctx, dto.PredictSingleRequest{
		Features:  req.Features,
		StudentID: req.StudentID,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to predict",
			slog.String("student_id", req.StudentID),
			slog.String("error", err.Error()),
		)
		return nil, toStatus(err)
	}

	return &PredictSingleResponse{Prediction: toPredictionMsg(result)}, nil
}

// PredictBatch handles a batch prediction request.
func (h *PredictionServiceHandler) PredictBatch(ctx context.Context, req *PredictBatchRequest) (*PredictBatchResponse, error) {
	if err := requireRole(ctx, auth.RoleFaculty, auth.RoleAdmin); err != nil {
		return nil, err
	}
	if req == nil || req.Records == nil {
		return nil, status.Error(codes.InvalidArgument, "records are required")
	}

	h.logger.InfoContext(ctx, "scoring batch",
		slog.String("batch_id", req.BatchID),
		slog.Int("records", len(req.Records)),
	)

	result, err := h.predictBatch.Execute(ctx, dto.PredictBatchRequest{
		BatchID: req.BatchID,
		Records: req.Records,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to score batch",
			slog.String("batch_id", req.BatchID),
			slog.String("error", err.Error()),
		)
		return nil, toStatus(err)
	}

	resp := &PredictBatchResponse{
		BatchID:     result.BatchID,
		Predictions: make([]*PredictionMsg, len(result.Items)),
	}
	for i, item := range result.Items {
		resp.Predictions[i] = toPredictionMsg(item)
	}
	return resp, nil
}

// GetModelStatus reports the active oracle.
func (h *PredictionServiceHandler) GetModelStatus(ctx context.Context, _ *GetModelStatusRequest) (*GetModelStatusResponse, error) {
	s := h.modelStatus.Execute(ctx)

	msg := &ModelStatusMsg{
		IsFallback:          s.IsFallback,
		ArtifactExists:      s.ArtifactExists,
		Source:              s.Source,
		Kind:                s.Kind,
		Checksum:            s.Checksum,
		ClassOrdering:       s.ClassOrdering,
		NumericFeatures:     s.Schema.Numeric,
		CategoricalFeatures: s.Schema.Categorical,
		Categories:          s.Schema.Categories,
		SchemaError:         s.SchemaError,
		FailIndex:           -1,
	}
	if s.FailIndex != nil {
		msg.FailIndex = int32(*s.FailIndex)
	}
	return &GetModelStatusResponse{Status: msg}, nil
}
