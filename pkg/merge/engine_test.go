package merge

import (
	"context"
	"testing"

	"github.com/saudelink/platform/pkg/common/models"
)

// Walks one address through first merge, identical re-merge and a content
// change, checking the plan the engine would hand to the transaction.
func TestBuildPlanAddressLifecycle(t *testing.T) {
	engine := &Engine{}
	ctx := context.Background()

	input := models.MergePatientInput{
		PatientCode: "38965996074.20210101",
		PatientCPF:  "38965996074",
		Name:        strPtr("Maria Silva"),
		AddressList: []models.AddressInput{{Line: "Rua A", Number: "10"}},
	}

	plan, err := engine.buildPlan(ctx, input, &PatientAggregate{})
	if err != nil {
		t.Fatalf("first merge plan: %v", err)
	}
	if len(plan.InsertAddresses) != 1 || len(plan.DeleteAddressIDs) != 0 {
		t.Fatalf("first merge: expected 1 insert 0 deletes, got %+v", plan)
	}
	stored := plan.InsertAddresses[0]
	if stored.Fingerprint == "" || stored.ID == "" {
		t.Fatalf("insert row missing fingerprint or id: %+v", stored)
	}

	current := &PatientAggregate{Addresses: []MergedAddress{stored}}

	plan, err = engine.buildPlan(ctx, input, current)
	if err != nil {
		t.Fatalf("re-merge plan: %v", err)
	}
	if len(plan.InsertAddresses) != 0 || len(plan.DeleteAddressIDs) != 0 {
		t.Fatalf("identical re-merge must be a no-op, got %+v", plan)
	}

	input.AddressList = []models.AddressInput{{Line: "Rua B", Number: "22"}}
	plan, err = engine.buildPlan(ctx, input, current)
	if err != nil {
		t.Fatalf("modified merge plan: %v", err)
	}
	if len(plan.DeleteAddressIDs) != 1 || plan.DeleteAddressIDs[0] != stored.ID {
		t.Fatalf("expected old row deleted, got %+v", plan.DeleteAddressIDs)
	}
	if len(plan.InsertAddresses) != 1 || plan.InsertAddresses[0].Fingerprint == stored.Fingerprint {
		t.Fatalf("expected one new row with a new fingerprint, got %+v", plan.InsertAddresses)
	}
}

func TestBuildPlanNilListLeavesCollectionAlone(t *testing.T) {
	engine := &Engine{}
	current := &PatientAggregate{
		Addresses: []MergedAddress{{ID: "a1", Fingerprint: "fp"}},
	}

	input := models.MergePatientInput{
		PatientCode: "38965996074.20210101",
		PatientCPF:  "38965996074",
		Race:        strPtr("parda"),
	}

	plan, err := engine.buildPlan(context.Background(), input, current)
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if len(plan.DeleteAddressIDs) != 0 || len(plan.InsertAddresses) != 0 {
		t.Fatalf("nil list must not touch addresses, got %+v", plan)
	}
	for _, col := range plan.UpdateColumns {
		if col == "name" {
			t.Fatal("absent name must stay out of the update columns")
		}
	}
}

func TestValidateInputRejectsForeignCode(t *testing.T) {
	engine := &Engine{}
	input := models.MergePatientInput{
		PatientCode: "11144477735.19900101",
		PatientCPF:  "38965996074",
	}
	if err := engine.validateInput(input); err == nil {
		t.Fatal("expected error when patient_code carries another CPF")
	}
}
