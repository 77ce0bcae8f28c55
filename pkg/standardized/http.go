package standardized

import (
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
	router.HandleFunc("/std/patientrecords", h.handlePatientRecords).Methods(http.MethodPost)
	router.HandleFunc("/std/patientconditions", h.handlePatientConditions).Methods(http.MethodPost)
	router.HandleFunc("/std/patientconditions/{patientCode}", h.handleListConditions).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleListConditions(w http.ResponseWriter, r *http.Request) {
	patientCode := mux.Vars(r)["patientCode"]

	conditions, err := h.service.ConditionsForPatient(r.Context(), patientCode)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conditions)
}

func (h *HTTPHandler) handlePatientRecords(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var inputs []models.StandardizePatientInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		logger.Log.WithError(err).Warn("invalid standardize payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.StandardizePatients(r.Context(), inputs)
	if err != nil {
		logger.Log.WithError(err).Error("standardization failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeBatchResponse(w, resp)
}

func (h *HTTPHandler) handlePatientConditions(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var inputs []models.StandardizeConditionInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		logger.Log.WithError(err).Warn("invalid standardize payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.StandardizeConditions(r.Context(), inputs)
	if err != nil {
		logger.Log.WithError(err).Error("standardization failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeBatchResponse(w, resp)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case faults.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case faults.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case faults.IsDeadlock(err):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logger.Log.WithError(err).Error("standardized read failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeBatchResponse maps per-item outcomes onto one status: 201 when every
// item landed, 207-style 200 with the error list when some failed, 400 when
// all failed.
func writeBatchResponse(w http.ResponseWriter, resp *models.StandardizeResponse) {
	status := http.StatusCreated
	if len(resp.Errors) > 0 {
		status = http.StatusOK
		if len(resp.Created) == 0 {
			status = http.StatusBadRequest
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
