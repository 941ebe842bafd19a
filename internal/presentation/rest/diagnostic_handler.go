package rest

import (
	"log/slog"
	"net/http"

	"github.com/acadrisk/acadrisk/internal/application/usecase"
)

// DiagnosticHandler serves model introspection endpoints.
type DiagnosticHandler struct {
	modelStatus    *usecase.ModelStatus
	testPrediction *usecase.TestPrediction
	analyzeModel   *usecase.AnalyzeModel
	logger         *slog.Logger
}

// NewDiagnosticHandler creates a new diagnostic handler.
func NewDiagnosticHandler(
	modelStatus *usecase.ModelStatus,
	testPrediction *usecase.TestPrediction,
	analyzeModel *usecase.AnalyzeModel,
	logger *slog.Logger,
) *DiagnosticHandler {
	return &DiagnosticHandler{
		modelStatus:    modelStatus,
		testPrediction: testPrediction,
		analyzeModel:   analyzeModel,
		logger:         logger,
	}
}

// RegisterRoutes registers diagnostic endpoints on the provided ServeMux.
func (h *DiagnosticHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /diagnostic/model-status", h.ModelStatus)
	mux.HandleFunc("GET /diagnostic/test-prediction", h.TestPrediction)
	mux.HandleFunc("POST /diagnostic/test-prediction", h.TestPrediction)
	mux.HandleFunc("GET /analysis/analyze-model", h.AnalyzeModel)
}

// ModelStatus reports the active oracle.
func (h *DiagnosticHandler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.modelStatus.Execute(r.Context()))
}

// TestPrediction runs the oracle on a fixed sample. Failures are reported in
// the body rather than through the status code.
func (h *DiagnosticHandler) TestPrediction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.testPrediction.Execute(r.Context()))
}

// AnalyzeModel reports feature importances and canned scenario outcomes.
func (h *DiagnosticHandler) AnalyzeModel(w http.ResponseWriter, r *http.Request) {
	resp, err := h.analyzeModel.Execute(r.Context())
	if err != nil {
		code := statusFor(err)
		h.logger.ErrorContext(r.Context(), "model analysis failed", "error", err)
		writeError(w, code, detailFor(code, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
