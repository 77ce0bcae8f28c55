package standardized

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func TestListConditionsRejectsMalformedPatientCode(t *testing.T) {
	svc := NewService(NewValidator(), nil, &fakeRawStore{}, nil, nil, nil)
	router := mux.NewRouter()
	NewHTTPHandler(svc, 0).Register(router)

	req := httptest.NewRequest(http.MethodGet, "/std/patientconditions/not-a-code", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed patient code, got %d", rec.Code)
	}
}
