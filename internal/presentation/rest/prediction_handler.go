package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/pkg/auth"
)

// PredictionHandler serves the prediction endpoints.
type PredictionHandler struct {
	predictSingle *usecase.PredictSingle
	predictBatch  *usecase.PredictBatch
	getPrediction *usecase.GetPrediction
	listStudent   *usecase.ListStudentPredictions
	listAll       *usecase.ListPredictions
	validator     *Validator
	logger        *slog.Logger
}

// NewPredictionHandler creates a new prediction handler.
func NewPredictionHandler(
	predictSingle *usecase.PredictSingle,
	predictBatch *usecase.PredictBatch,
	getPrediction *usecase.GetPrediction,
	listStudent *usecase.ListStudentPredictions,
	listAll *usecase.ListPredictions,
	validator *Validator,
	logger *slog.Logger,
) *PredictionHandler {
	return &PredictionHandler{
		predictSingle: predictSingle,
		predictBatch:  predictBatch,
		getPrediction: getPrediction,
		listStudent:   listStudent,
		listAll:       listAll,
		validator:     validator,
		logger:        logger,
	}
}

// RegisterRoutes registers prediction endpoints on the provided ServeMux.
// Batch scoring and browsing all predictions are limited to faculty and
// admins when auth is enabled.
func (h *PredictionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict/single", h.PredictSingle)
	mux.Handle("POST /predict/batch", auth.RequireAnyRole(http.HandlerFunc(h.PredictBatch), auth.RoleFaculty, auth.RoleAdmin))
	mux.Handle("GET /predictions", auth.RequireAnyRole(http.HandlerFunc(h.ListPredictions), auth.RoleFaculty, auth.RoleAdmin))
	mux.HandleFunc("GET /predictions/{id}", h.GetPrediction)
	mux.HandleFunc("GET /students/{student_id}/predictions", h.ListStudentPredictions)
}

// PredictSingle scores one student record.
func (h *PredictionHandler) PredictSingle(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictSingleRequest
	if err := decodeValidated(w, r, h.validator.single, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.predictSingle.Execute(r.Context(), req)
	if err != nil {
		h.fail(w, r, "single prediction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PredictBatch scores a list of student records in one pass.
func (h *PredictionHandler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictBatchRequest
	if err := decodeValidated(w, r, h.validator.batch, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.predictBatch.Execute(r.Context(), req)
	if err != nil {
		h.fail(w, r, "batch prediction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPrediction returns a stored prediction.
func (h *PredictionHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id")
		return
	}

	resp, err := h.getPrediction.Execute(r.Context(), dto.GetPredictionRequest{PredictionID: id})
	if err != nil {
		h.fail(w, r, "get prediction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListStudentPredictions returns a page of a student's predictions.
func (h *PredictionHandler) ListStudentPredictions(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := queryPage(w, r)
	if !ok {
		return
	}

	resp, err := h.listStudent.Execute(r.Context(), dto.ListStudentPredictionsRequest{
		StudentID: r.PathValue("student_id"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.fail(w, r, "list predictions failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPredictions returns a page of every stored prediction, newest first.
func (h *PredictionHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := queryPage(w, r)
	if !ok {
		return
	}

	resp, err := h.listAll.Execute(r.Context(), dto.ListPredictionsRequest{Limit: limit, Offset: offset})
	if err != nil {
		h.fail(w, r, "list predictions failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PredictionHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	failRequest(w, r, h.logger, msg, err)
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// queryPage reads the limit and offset query parameters.
func queryPage(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	var err error
	if limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return 0, 0, false
	}
	if offset, err = queryInt(r, "offset"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}
