package rawrecords

import "testing"

func TestMarkValidWriteSetLeavesIngestionMomentAlone(t *testing.T) {
	assignments := markValidAssignments()

	if _, ok := assignments["updated_at"]; ok {
		t.Fatal("consumption transition must not move the ingestion moment")
	}
	valid, ok := assignments["is_valid"].(*bool)
	if !ok || valid == nil || !*valid {
		t.Fatalf("expected is_valid=true, got %v", assignments["is_valid"])
	}
	if len(assignments) != 1 {
		t.Fatalf("expected is_valid to be the only column, got %v", assignments)
	}
}
