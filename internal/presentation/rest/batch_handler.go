package rest

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/pkg/auth"
)

// BatchHandler serves stored batch endpoints.
type BatchHandler struct {
	getBatch    *usecase.GetBatch
	listBatches *usecase.ListBatches
	deleteBatch *usecase.DeleteBatch
	logger      *slog.Logger
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(
	getBatch *usecase.GetBatch,
	listBatches *usecase.ListBatches,
	deleteBatch *usecase.DeleteBatch,
	logger *slog.Logger,
) *BatchHandler {
	return &BatchHandler{
		getBatch:    getBatch,
		listBatches: listBatches,
		deleteBatch: deleteBatch,
		logger:      logger,
	}
}

// RegisterRoutes registers batch endpoints on the provided ServeMux. Reads
// need the faculty or admin role and deletion needs admin.
func (h *BatchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /batches", auth.RequireAnyRole(http.HandlerFunc(h.ListBatches), auth.RoleFaculty, auth.RoleAdmin))
	mux.Handle("GET /batches/{id}", auth.RequireAnyRole(http.HandlerFunc(h.GetBatch), auth.RoleFaculty, auth.RoleAdmin))
	mux.Handle("DELETE /batches/{id}", auth.RequireAnyRole(http.HandlerFunc(h.DeleteBatch), auth.RoleAdmin))
}

// ListBatches returns a page of batch summaries, newest first.
func (h *BatchHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := queryPage(w, r)
	if !ok {
		return
	}

	resp, err := h.listBatches.Execute(r.Context(), dto.ListBatchesRequest{Limit: limit, Offset: offset})
	if err != nil {
		failRequest(w, r, h.logger, "list batches failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBatch returns a batch summary and a page of its predictions.
func (h *BatchHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	limit, offset, ok := queryPage(w, r)
	if !ok {
		return
	}

	resp, err := h.getBatch.Execute(r.Context(), dto.GetBatchRequest{BatchID: id, Limit: limit, Offset: offset})
	if err != nil {
		failRequest(w, r, h.logger, "get batch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteBatch removes a stored batch.
func (h *BatchHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	resp, err := h.deleteBatch.Execute(r.Context(), dto.DeleteBatchRequest{BatchID: id})
	if err != nil {
		failRequest(w, r, h.logger, "delete batch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
