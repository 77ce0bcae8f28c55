package standardized

import (
	"context"
	"testing"
	"time"

	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/rawrecords"
)

type fakeRawStore struct {
	record     rawrecords.RawPatientRecord
	condition  rawrecords.RawPatientCondition
	markedIDs  []string
	notFoundID string
}

func (f *fakeRawStore) PatientRecordByID(ctx context.Context, id string) (*rawrecords.RawPatientRecord, error) {
	if id == f.notFoundID {
		return nil, faults.NewNotFound("raw patient record", id)
	}
	record := f.record
	record.ID = id
	return &record, nil
}

func (f *fakeRawStore) PatientConditionByID(ctx context.Context, id string) (*rawrecords.RawPatientCondition, error) {
	if id == f.notFoundID {
		return nil, faults.NewNotFound("raw patient condition", id)
	}
	condition := f.condition
	condition.ID = id
	return &condition, nil
}

func (f *fakeRawStore) MarkPatientRecordValid(ctx context.Context, id string) error {
	f.markedIDs = append(f.markedIDs, id)
	return nil
}

func (f *fakeRawStore) MarkPatientConditionValid(ctx context.Context, id string) error {
	f.markedIDs = append(f.markedIDs, id)
	return nil
}

// A CPF that differs from the raw source's must abort the item before any
// write. The nil repositories would panic if the item got past the check.
func TestStandardizePatientCPFMismatchIsConflict(t *testing.T) {
	raw := &fakeRawStore{
		record: rawrecords.RawPatientRecord{
			PatientCPF:      "38965996074",
			PatientCode:     "38965996074.20210101",
			DataSourceCNES:  "3567508",
			SourceUpdatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	svc := NewService(NewValidator(), nil, raw, nil, nil, nil)

	input := models.StandardizePatientInput{
		RawSourceID: "raw-1",
		PatientCPF:  "11144477735",
		PatientCode: "11144477735.19900101",
		Name:        "Maria Silva",
		BirthDate:   "1990-01-01",
		Gender:      "female",
	}

	_, err := svc.standardizePatient(context.Background(), input)
	if !faults.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(raw.markedIDs) != 0 {
		t.Fatalf("mismatched record must not be marked valid, marked %v", raw.markedIDs)
	}
}

func TestStandardizePatientUnknownRawSourceIsNotFound(t *testing.T) {
	raw := &fakeRawStore{notFoundID: "missing"}
	svc := NewService(NewValidator(), nil, raw, nil, nil, nil)

	input := models.StandardizePatientInput{
		RawSourceID: "missing",
		PatientCPF:  "38965996074",
		PatientCode: "38965996074.20210101",
		Name:        "Maria Silva",
		BirthDate:   "2021-01-01",
		Gender:      "female",
	}

	_, err := svc.standardizePatient(context.Background(), input)
	if !faults.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStandardizeBatchReportsMismatchPerItem(t *testing.T) {
	raw := &fakeRawStore{
		record: rawrecords.RawPatientRecord{
			PatientCPF:      "38965996074",
			PatientCode:     "38965996074.20210101",
			DataSourceCNES:  "3567508",
			SourceUpdatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	svc := NewService(NewValidator(), nil, raw, nil, nil, nil)

	resp, err := svc.StandardizePatients(context.Background(), []models.StandardizePatientInput{{
		RawSourceID: "raw-1",
		PatientCPF:  "11144477735",
		PatientCode: "11144477735.19900101",
		Name:        "Maria Silva",
		BirthDate:   "1990-01-01",
		Gender:      "female",
	}})
	if err != nil {
		t.Fatalf("batch must not fail as a whole: %v", err)
	}
	if len(resp.Created) != 0 || len(resp.Errors) != 1 {
		t.Fatalf("expected 0 created 1 error, got %+v", resp)
	}
	if resp.Errors[0].Index != 0 || resp.Errors[0].Identifier != "raw-1" {
		t.Fatalf("unexpected item error: %+v", resp.Errors[0])
	}
}
