package standardized

import (
	"testing"

	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/models"
)

func validPatientInput() models.StandardizePatientInput {
	return models.StandardizePatientInput{
		RawSourceID: "31e00a93-53d4-48b7-b934-66f1a7f916cb",
		PatientCPF:  "38965996074",
		PatientCode: "38965996074.20210101",
		Name:        "Maria da Silva",
		BirthDate:   "2021-01-01",
		Gender:      "female",
		Race:        "parda",
		Nationality: "B",
	}
}

func TestValidatePatientInputAccepts(t *testing.T) {
	birthDate, err := NewValidator().ValidatePatientInput(validPatientInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if birthDate.Format("2006-01-02") != "2021-01-01" {
		t.Fatalf("unexpected birth date %v", birthDate)
	}
}

func TestValidatePatientInputRejections(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		name   string
		mutate func(*models.StandardizePatientInput)
	}{
		{"missing raw source", func(i *models.StandardizePatientInput) { i.RawSourceID = "" }},
		{"bad cpf", func(i *models.StandardizePatientInput) { i.PatientCPF = "12345678900" }},
		{"bad patient code", func(i *models.StandardizePatientInput) { i.PatientCode = "x.y" }},
		{"missing name", func(i *models.StandardizePatientInput) { i.Name = "" }},
		{"bad birth date", func(i *models.StandardizePatientInput) { i.BirthDate = "01/01/2021" }},
		{"unknown gender", func(i *models.StandardizePatientInput) { i.Gender = "other" }},
		{"unknown race", func(i *models.StandardizePatientInput) { i.Race = "azul" }},
		{"unknown nationality", func(i *models.StandardizePatientInput) { i.Nationality = "X" }},
	}
	for _, tc := range cases {
		input := validPatientInput()
		tc.mutate(&input)
		if _, err := v.ValidatePatientInput(input); err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		} else if !faults.IsValidation(err) {
			t.Fatalf("%s: expected ValidationError, got %T", tc.name, err)
		}
	}
}

func TestValidateConditionInputResolvesCodeType(t *testing.T) {
	v := NewValidator()
	input := models.StandardizeConditionInput{
		RawSourceID:    "7d5c9a41-ef03-4f5c-86b2-0f2b8f4a2d10",
		PatientCPF:     "38965996074",
		PatientCode:    "38965996074.20210101",
		Cid:            "I10",
		ClinicalStatus: "resolved",
		Category:       "problem-list-item",
		Date:           "2024-02-10",
	}
	codeType, codeValue, date, err := v.ValidateConditionInput(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codeType != "cid" || codeValue != "I10" {
		t.Fatalf("unexpected code %s:%s", codeType, codeValue)
	}
	if date == nil || date.Format("2006-01-02") != "2024-02-10" {
		t.Fatalf("unexpected date %v", date)
	}
}

func TestValidateConditionInputRejectsAmbiguousCode(t *testing.T) {
	v := NewValidator()
	input := models.StandardizeConditionInput{
		RawSourceID:    "7d5c9a41-ef03-4f5c-86b2-0f2b8f4a2d10",
		PatientCPF:     "38965996074",
		PatientCode:    "38965996074.20210101",
		Cid:            "I10",
		Ciap:           "K86",
		ClinicalStatus: "resolved",
		Category:       "problem-list-item",
	}
	if _, _, _, err := v.ValidateConditionInput(input); err == nil {
		t.Fatal("expected rejection when both cid and ciap are set")
	}

	input.Cid, input.Ciap = "", ""
	if _, _, _, err := v.ValidateConditionInput(input); err == nil {
		t.Fatal("expected rejection when neither cid nor ciap is set")
	}
}
