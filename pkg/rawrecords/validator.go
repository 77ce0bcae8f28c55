package rawrecords

import (
	"errors"

	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/cpf"
)

var (
	errEmptyPayload    = errors.New("missing data payload")
	errNoEventMoment   = errors.New("missing source_updated_at")
	errCodeCPFMismatch = errors.New("patient_code does not carry patient_cpf")
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRecord checks one raw input independently of its siblings so a
// batch can partially succeed.
func (v *Validator) ValidateRecord(record models.RawRecordInput) error {
	if err := cpf.Validate(record.PatientCPF); err != nil {
		return faults.NewValidation("patient_cpf", err)
	}
	code, err := cpf.ParsePatientCode(record.PatientCode)
	if err != nil {
		return faults.NewValidation("patient_code", err)
	}
	if code.CPF != record.PatientCPF {
		return faults.NewValidation("patient_code", errCodeCPFMismatch)
	}
	if record.SourceUpdatedAt.IsZero() {
		return faults.NewValidation("source_updated_at", errNoEventMoment)
	}
	if len(record.Data) == 0 {
		return faults.NewValidation("data", errEmptyPayload)
	}
	return nil
}
