package rawrecords

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/logger"
	"github.com/saudelink/platform/pkg/common/models"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/raw/datasources", h.handleRegisterDataSource).Methods(http.MethodPost)
	router.HandleFunc("/raw/patientrecords", h.handlePatientRecords).Methods(http.MethodPost)
	router.HandleFunc("/raw/patientconditions", h.handlePatientConditions).Methods(http.MethodPost)
}

func (h *HTTPHandler) handleRegisterDataSource(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var source DataSource
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	registered, err := h.service.RegisterDataSource(r.Context(), source)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(registered)
}

func (h *HTTPHandler) handlePatientRecords(w http.ResponseWriter, r *http.Request) {
	h.handleIngest(w, r, h.service.IngestPatientRecords)
}

func (h *HTTPHandler) handlePatientConditions(w http.ResponseWriter, r *http.Request) {
	h.handleIngest(w, r, h.service.IngestPatientConditions)
}

func (h *HTTPHandler) handleIngest(w http.ResponseWriter, r *http.Request, ingest func(ctx context.Context, req models.RawIngestRequest) (*models.RawIngestResponse, error)) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req models.RawIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid raw ingest payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CNES == "" {
		http.Error(w, "cnes is required", http.StatusBadRequest)
		return
	}

	resp, err := ingest(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
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
		logger.Log.WithError(err).Error("raw ingest failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
