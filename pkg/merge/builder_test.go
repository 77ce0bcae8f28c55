package merge

import (
	"testing"
	"time"

	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/reconcile"
	"github.com/saudelink/platform/pkg/standardized"
)

func strPtr(s string) *string { return &s }

func TestAssemblePatientPartialColumns(t *testing.T) {
	input := models.MergePatientInput{
		PatientCode: "38965996074.19900101",
		PatientCPF:  "38965996074",
		Name:        strPtr("Maria Silva"),
		Gender:      strPtr("female"),
	}

	patient, columns, err := assemblePatient(input)
	if err != nil {
		t.Fatalf("assemblePatient: %v", err)
	}
	if patient.Name != "Maria Silva" || patient.GenderSlug != "female" {
		t.Fatalf("unexpected patient row: %+v", patient)
	}

	want := map[string]bool{"patient_cpf": true, "name": true, "gender_slug": true}
	if len(columns) != len(want) {
		t.Fatalf("expected %d update columns, got %v", len(want), columns)
	}
	for _, col := range columns {
		if !want[col] {
			t.Fatalf("unexpected update column %q", col)
		}
	}
}

func TestAssemblePatientBadBirthDate(t *testing.T) {
	input := models.MergePatientInput{
		PatientCode: "38965996074.19900101",
		PatientCPF:  "38965996074",
		BirthDate:   strPtr("01/01/1990"),
	}
	if _, _, err := assemblePatient(input); err == nil {
		t.Fatal("expected error for malformed birth date")
	}
}

func TestAddressFingerprintIgnoresEmptyFields(t *testing.T) {
	a := models.AddressInput{Line: "Rua A", CityCod: "3304557"}
	b := models.AddressInput{Line: "Rua A", CityCod: "3304557", Complement: ""}

	fpA, err := fingerprintAddresses([]models.AddressInput{a})
	if err != nil {
		t.Fatalf("fingerprint a: %v", err)
	}
	fpB, err := fingerprintAddresses([]models.AddressInput{b})
	if err != nil {
		t.Fatalf("fingerprint b: %v", err)
	}
	if fpA[0].Fingerprint != fpB[0].Fingerprint {
		t.Fatal("empty field changed the fingerprint")
	}

	c := models.AddressInput{Line: "Rua A", CityCod: "3304557", Complement: "apto 2"}
	fpC, err := fingerprintAddresses([]models.AddressInput{c})
	if err != nil {
		t.Fatalf("fingerprint c: %v", err)
	}
	if fpC[0].Fingerprint == fpA[0].Fingerprint {
		t.Fatal("distinct address produced the same fingerprint")
	}
}

func TestUnchangedListProducesNoWork(t *testing.T) {
	incoming, err := fingerprintTelecoms([]models.TelecomInput{
		{System: "phone", Value: "21999990000"},
		{System: "email", Value: "maria@example.com"},
	})
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	current := make([]MergedTelecom, 0, len(incoming))
	for _, item := range incoming {
		row, err := newMergedTelecom("38965996074.19900101", item)
		if err != nil {
			t.Fatalf("newMergedTelecom: %v", err)
		}
		current = append(current, row)
	}

	toDelete, toInsert := reconcile.Diff(current, incoming,
		func(row MergedTelecom) string { return row.Fingerprint },
		func(p fingerprintedTelecom) string { return p.Fingerprint },
	)
	if len(toDelete) != 0 || len(toInsert) != 0 {
		t.Fatalf("expected no-op, got %d deletes %d inserts", len(toDelete), len(toInsert))
	}
}

func TestDuplicateCNSEntriesCollapse(t *testing.T) {
	incoming, err := fingerprintHealthCards([]models.CNSInput{
		{Value: "700000000000001", IsMain: true},
		{Value: "700000000000001", IsMain: true},
	})
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	_, toInsert := reconcile.Diff(nil, incoming,
		func(c MergedHealthCard) string { return c.Fingerprint },
		func(p fingerprintedCNS) string { return p.Fingerprint },
	)
	if len(toInsert) != 1 {
		t.Fatalf("expected duplicates to collapse to 1 insert, got %d", len(toInsert))
	}
}

func TestBuildInputFromStandardized(t *testing.T) {
	birth := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	record := standardized.StandardizedPatientRecord{
		PatientCPF:  "38965996074",
		PatientCode: "38965996074.19900101",
		Name:        "Maria Silva",
		BirthDate:   birth,
		Gender:      "female",
	}

	input, err := BuildInput(&record)
	if err != nil {
		t.Fatalf("BuildInput: %v", err)
	}
	if input.PatientCode != record.PatientCode || input.PatientCPF != record.PatientCPF {
		t.Fatalf("identity fields not carried: %+v", input)
	}
	if input.Name == nil || *input.Name != "Maria Silva" {
		t.Fatalf("name not carried: %+v", input.Name)
	}
	if input.BirthDate == nil || *input.BirthDate != "1990-01-01" {
		t.Fatalf("birth date not formatted: %+v", input.BirthDate)
	}
	if input.MotherName != nil {
		t.Fatal("empty mother name should map to nil")
	}
	if input.AddressList != nil {
		t.Fatal("absent address list should stay nil")
	}
}

func TestNewMergedTelecomRequiresSystemAndValue(t *testing.T) {
	item := fingerprintedTelecom{Fingerprint: "fp", Input: models.TelecomInput{Value: "21999990000"}}
	if _, err := newMergedTelecom("38965996074.19900101", item); err == nil {
		t.Fatal("expected error for telecom without system")
	}
}
