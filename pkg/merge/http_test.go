package merge

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetPatientRejectsMalformedCode(t *testing.T) {
	router := mux.NewRouter()
	NewHTTPHandler(&Engine{}, 0).Register(router)

	req := httptest.NewRequest(http.MethodGet, "/mrg/patients/not-a-code", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed patient code, got %d", rec.Code)
	}
}
