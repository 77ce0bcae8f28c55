package formatters

import "testing"

func TestRegisterRejectsUnknownSystem(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("cerner", EntityPatientRecord, Sanitize); err == nil {
		t.Fatal("expected unknown source system to be rejected")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("vitai", EntityPatientRecord, Sanitize); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register("vitai", EntityPatientRecord, Sanitize); err == nil {
		t.Fatal("expected duplicate registration to be rejected")
	}
}

func TestDefaultCoversAllPairs(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, system := range []string{"vitacare", "vitai", "smsrio"} {
		for _, entity := range []string{EntityPatientRecord, EntityPatientCondition} {
			if _, ok := r.Resolve(system, entity); !ok {
				t.Fatalf("no formatter for (%s, %s)", system, entity)
			}
		}
	}
}

func TestSanitizeDropsEmptiesAndTrims(t *testing.T) {
	out, err := Sanitize(map[string]interface{}{
		"name":    "  Maria da Silva  ",
		"empty":   "",
		"missing": nil,
		"nested":  map[string]interface{}{"phone": " 2199990000 ", "blank": "  "},
		"list":    []interface{}{map[string]interface{}{"line": "Rua A"}, nil},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["name"] != "Maria da Silva" {
		t.Fatalf("expected trimmed name, got %q", out["name"])
	}
	if _, ok := out["empty"]; ok {
		t.Fatal("empty string should be dropped")
	}
	if _, ok := out["missing"]; ok {
		t.Fatal("nil value should be dropped")
	}
	nested := out["nested"].(map[string]interface{})
	if nested["phone"] != "2199990000" {
		t.Fatalf("expected trimmed nested phone, got %q", nested["phone"])
	}
	if _, ok := nested["blank"]; ok {
		t.Fatal("blank nested value should be dropped")
	}
	list := out["list"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("expected nil list items dropped, got %d items", len(list))
	}
}

func TestChainAppliesInOrder(t *testing.T) {
	f := Chain(LowercaseKeys, Sanitize)
	out, err := f(map[string]interface{}{"NOME": " Jose ", "VAZIO": ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["nome"] != "Jose" {
		t.Fatalf("expected lowercased trimmed key, got %v", out)
	}
	if _, ok := out["vazio"]; ok {
		t.Fatal("empty value should be dropped after lowercasing")
	}
}
