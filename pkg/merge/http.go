package merge

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/logger"
	"github.com/saudelink/platform/pkg/common/models"
)

type HTTPHandler struct {
	engine  *Engine
	maxBody int64
}

func NewHTTPHandler(engine *Engine, maxBody int64) *HTTPHandler {
	return &HTTPHandler{engine: engine, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/mrg/patients", h.handleMergeBatch).Methods(http.MethodPost)
	router.HandleFunc("/mrg/patients/{patientCode}", h.handleGetPatient).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleMergeBatch(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var inputs []models.MergePatientInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		logger.Log.WithError(err).Warn("invalid merge payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(inputs) == 0 {
		http.Error(w, "at least one patient is required", http.StatusBadRequest)
		return
	}

	resp := h.engine.MergeBatch(r.Context(), inputs)

	status := http.StatusCreated
	switch {
	case len(resp.Merged) == 0:
		status = http.StatusBadRequest
	case len(resp.Errors) > 0:
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	patientCode := mux.Vars(r)["patientCode"]

	aggregate, err := h.engine.GetPatient(r.Context(), patientCode)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(aggregate)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case faults.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case faults.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case faults.IsConflict(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case faults.IsDeadlock(err):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logger.Log.WithError(err).Error("merge request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
