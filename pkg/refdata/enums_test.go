package refdata

import "testing"

func TestEnumValidationAcceptsClosedSets(t *testing.T) {
	cases := []struct {
		name     string
		validate func(string) error
		values   []string
	}{
		{"gender", ValidateGender, Genders},
		{"race", ValidateRace, Races},
		{"nationality", ValidateNationality, Nationalities},
		{"clinical_status", ValidateClinicalStatus, ClinicalStatuses},
		{"category", ValidateConditionCategory, ConditionCategories},
		{"system", ValidateSourceSystem, SourceSystems},
	}
	for _, tc := range cases {
		for _, value := range tc.values {
			if err := tc.validate(value); err != nil {
				t.Fatalf("%s: expected %q accepted, got %v", tc.name, value, err)
			}
		}
		if err := tc.validate("definitely-not-a-value"); err == nil {
			t.Fatalf("%s: expected unknown value rejected", tc.name)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	cat := DefaultCatalog()
	if _, ok := cat.Lookup(CodeTypeCID, "I10"); !ok {
		t.Fatal("expected CID I10 in default catalog")
	}
	if _, ok := cat.Lookup(CodeTypeCID, "i10"); !ok {
		t.Fatal("lookup should be case insensitive on the code value")
	}
	if _, ok := cat.Lookup(CodeTypeCIAP, "K86"); !ok {
		t.Fatal("expected CIAP K86 in default catalog")
	}
	if _, ok := cat.Lookup(CodeTypeCID, "X99"); ok {
		t.Fatal("unknown code should miss")
	}
}

func TestCatalogCodesFlatten(t *testing.T) {
	cat := DefaultCatalog()
	codes := cat.Codes()
	if len(codes) != len(cat.CID)+len(cat.CIAP) {
		t.Fatalf("expected %d codes, got %d", len(cat.CID)+len(cat.CIAP), len(codes))
	}
	for _, code := range codes {
		if code.ID != code.Type+":"+code.Value {
			t.Fatalf("unexpected code id %s", code.ID)
		}
	}
}
