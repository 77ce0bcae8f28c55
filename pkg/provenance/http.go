package provenance

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/logger"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/prv/patientrecords", h.handleUpdatedSince).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleUpdatedSince(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start, err := parseTimeParam(query.Get("start"))
	if err != nil {
		http.Error(w, "start must be RFC3339", http.StatusBadRequest)
		return
	}
	end, err := parseTimeParam(query.Get("end"))
	if err != nil {
		http.Error(w, "end must be RFC3339", http.StatusBadRequest)
		return
	}
	page := parseIntParam(query.Get("page"))
	size := parseIntParam(query.Get("size"))

	result, err := h.service.FindUpdatedSince(r.Context(), start, end, page, size)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func parseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseIntParam(value string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case faults.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case faults.IsDeadlock(err):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logger.Log.WithError(err).Error("provenance query failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
