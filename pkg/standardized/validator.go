package standardized

import (
	"errors"
	"time"

	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/cpf"
	"github.com/saudelink/platform/pkg/refdata"
)

const dateLayout = "2006-01-02"

var (
	errMissingRawSource = errors.New("raw_source_id is required")
	errMissingName      = errors.New("name is required")
	errMissingCode      = errors.New("exactly one of cid or ciap is required")
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) ValidatePatientInput(input models.StandardizePatientInput) (time.Time, error) {
	if input.RawSourceID == "" {
		return time.Time{}, faults.NewValidation("raw_source_id", errMissingRawSource)
	}
	if err := cpf.Validate(input.PatientCPF); err != nil {
		return time.Time{}, faults.NewValidation("patient_cpf", err)
	}
	if err := cpf.ValidatePatientCode(input.PatientCode); err != nil {
		return time.Time{}, faults.NewValidation("patient_code", err)
	}
	if input.Name == "" {
		return time.Time{}, faults.NewValidation("name", errMissingName)
	}
	birthDate, err := time.Parse(dateLayout, input.BirthDate)
	if err != nil {
		return time.Time{}, faults.Validationf("birth_date", "expected YYYY-MM-DD, got %q", input.BirthDate)
	}
	if err := refdata.ValidateGender(input.Gender); err != nil {
		return time.Time{}, err
	}
	if input.Race != "" {
		if err := refdata.ValidateRace(input.Race); err != nil {
			return time.Time{}, err
		}
	}
	if input.Nationality != "" {
		if err := refdata.ValidateNationality(input.Nationality); err != nil {
			return time.Time{}, err
		}
	}
	return birthDate, nil
}

// ValidateConditionInput returns the resolved (code type, code value, date).
func (v *Validator) ValidateConditionInput(input models.StandardizeConditionInput) (string, string, *time.Time, error) {
	if input.RawSourceID == "" {
		return "", "", nil, faults.NewValidation("raw_source_id", errMissingRawSource)
	}
	if err := cpf.Validate(input.PatientCPF); err != nil {
		return "", "", nil, faults.NewValidation("patient_cpf", err)
	}
	if err := cpf.ValidatePatientCode(input.PatientCode); err != nil {
		return "", "", nil, faults.NewValidation("patient_code", err)
	}

	var codeType, codeValue string
	switch {
	case input.Cid != "" && input.Ciap != "":
		return "", "", nil, faults.NewValidation("cid", errMissingCode)
	case input.Cid != "":
		codeType, codeValue = refdata.CodeTypeCID, input.Cid
	case input.Ciap != "":
		codeType, codeValue = refdata.CodeTypeCIAP, input.Ciap
	default:
		return "", "", nil, faults.NewValidation("cid", errMissingCode)
	}

	if err := refdata.ValidateClinicalStatus(input.ClinicalStatus); err != nil {
		return "", "", nil, err
	}
	if err := refdata.ValidateConditionCategory(input.Category); err != nil {
		return "", "", nil, err
	}

	var date *time.Time
	if input.Date != "" {
		parsed, err := time.Parse(dateLayout, input.Date)
		if err != nil {
			return "", "", nil, faults.Validationf("date", "expected YYYY-MM-DD, got %q", input.Date)
		}
		date = &parsed
	}
	return codeType, codeValue, date, nil
}
