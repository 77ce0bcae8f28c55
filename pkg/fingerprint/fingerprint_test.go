package fingerprint

import "testing"

func TestComputeIsOrderIndependent(t *testing.T) {
	a, err := Compute(map[string]interface{}{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Compute(map[string]interface{}{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical fingerprints, got %s and %s", a, b)
	}
}

func TestComputeDistinguishesDistinctRecords(t *testing.T) {
	records := []map[string]interface{}{
		{"line": "Rua A", "number": "10", "city_cod": "3304557"},
		{"line": "Rua A", "number": "11", "city_cod": "3304557"},
		{"system": "phone", "value": "21999990000"},
		{"value": "700000000000001", "is_main": true},
	}
	seen := map[string]int{}
	for i, rec := range records {
		fp, err := Compute(rec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fp) != 64 {
			t.Fatalf("expected 64 hex chars, got %d", len(fp))
		}
		if prev, dup := seen[fp]; dup {
			t.Fatalf("records %d and %d collided on %s", prev, i, fp)
		}
		seen[fp] = i
	}
}

func TestComputeHandlesNestedValues(t *testing.T) {
	a, err := Compute(map[string]interface{}{
		"period": map[string]interface{}{"start": "2021-01-01", "end": nil},
		"tags":   []interface{}{"x", "y"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Compute(map[string]interface{}{
		"tags":   []interface{}{"x", "y"},
		"period": map[string]interface{}{"end": nil, "start": "2021-01-01"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatal("nested key order changed the fingerprint")
	}
}

func TestComputeStructMatchesEquivalentMap(t *testing.T) {
	type telecom struct {
		System string `json:"system"`
		Value  string `json:"value"`
	}
	fromStruct, err := ComputeStruct(telecom{System: "phone", Value: "2125551234"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fromMap, err := Compute(map[string]interface{}{"system": "phone", "value": "2125551234"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromStruct != fromMap {
		t.Fatalf("struct and map fingerprints differ: %s vs %s", fromStruct, fromMap)
	}
}
