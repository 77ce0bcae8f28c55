package reconcile

import "testing"

type row struct {
	ID string
	FP string
}

type payload struct {
	FP   string
	Line string
}

func rowKey(r row) string         { return r.FP }
func payloadKey(p payload) string { return p.FP }

func TestDiffNoOpWhenContentUnchanged(t *testing.T) {
	current := []row{{ID: "1", FP: "aaa"}, {ID: "2", FP: "bbb"}}
	incoming := []payload{{FP: "bbb"}, {FP: "aaa"}}

	toDelete, toInsert := Diff(current, incoming, rowKey, payloadKey)
	if len(toDelete) != 0 {
		t.Fatalf("expected no deletions, got %v", toDelete)
	}
	if len(toInsert) != 0 {
		t.Fatalf("expected no insertions, got %v", toInsert)
	}
}

func TestDiffReplacesChangedContent(t *testing.T) {
	current := []row{{ID: "1", FP: "old"}}
	incoming := []payload{{FP: "new", Line: "Rua B"}}

	toDelete, toInsert := Diff(current, incoming, rowKey, payloadKey)
	if len(toDelete) != 1 || toDelete[0].ID != "1" {
		t.Fatalf("expected row 1 deleted, got %v", toDelete)
	}
	if len(toInsert) != 1 || toInsert[0].Line != "Rua B" {
		t.Fatalf("expected one insertion, got %v", toInsert)
	}
}

func TestDiffPartialOverlap(t *testing.T) {
	current := []row{{ID: "1", FP: "keep"}, {ID: "2", FP: "drop"}}
	incoming := []payload{{FP: "keep"}, {FP: "add"}}

	toDelete, toInsert := Diff(current, incoming, rowKey, payloadKey)
	if len(toDelete) != 1 || toDelete[0].FP != "drop" {
		t.Fatalf("expected only the dropped row deleted, got %v", toDelete)
	}
	if len(toInsert) != 1 || toInsert[0].FP != "add" {
		t.Fatalf("expected only the new payload inserted, got %v", toInsert)
	}
}

func TestDiffCollapsesDuplicateIncoming(t *testing.T) {
	incoming := []payload{{FP: "same"}, {FP: "same"}, {FP: "same"}}

	toDelete, toInsert := Diff(nil, incoming, rowKey, payloadKey)
	if len(toDelete) != 0 {
		t.Fatalf("expected no deletions, got %v", toDelete)
	}
	if len(toInsert) != 1 {
		t.Fatalf("duplicate payloads should collapse to one insertion, got %d", len(toInsert))
	}
}

func TestDiffEmptyIncomingDeletesEverything(t *testing.T) {
	current := []row{{ID: "1", FP: "a"}, {ID: "2", FP: "b"}}

	toDelete, toInsert := Diff(current, nil, rowKey, payloadKey)
	if len(toDelete) != 2 {
		t.Fatalf("expected both rows deleted, got %v", toDelete)
	}
	if len(toInsert) != 0 {
		t.Fatalf("expected no insertions, got %v", toInsert)
	}
}
