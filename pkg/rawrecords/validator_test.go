package rawrecords

import (
	"testing"
	"time"

	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/models"
)

func validInput() models.RawRecordInput {
	return models.RawRecordInput{
		PatientCPF:      "38965996074",
		PatientCode:     "38965996074.20210101",
		SourceUpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Data:            map[string]interface{}{"nome": "Maria"},
	}
}

func TestValidateRecordAcceptsWellFormedInput(t *testing.T) {
	if err := NewValidator().ValidateRecord(validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRecordRejections(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name   string
		mutate func(*models.RawRecordInput)
	}{
		{"bad cpf checksum", func(r *models.RawRecordInput) { r.PatientCPF = "38965996075" }},
		{"bad patient code", func(r *models.RawRecordInput) { r.PatientCode = "38965996074" }},
		{"code cpf mismatch", func(r *models.RawRecordInput) {
			r.PatientCode = "52998224725.20210101"
		}},
		{"zero event moment", func(r *models.RawRecordInput) { r.SourceUpdatedAt = time.Time{} }},
		{"empty payload", func(r *models.RawRecordInput) { r.Data = nil }},
	}

	for _, tc := range cases {
		record := validInput()
		tc.mutate(&record)
		err := v.ValidateRecord(record)
		if err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		}
		if !faults.IsValidation(err) {
			t.Fatalf("%s: expected ValidationError, got %T", tc.name, err)
		}
	}
}
