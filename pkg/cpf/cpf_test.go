package cpf

import (
	"strings"
	"testing"
)

func TestValidateAcceptsKnownGoodCPFs(t *testing.T) {
	for _, value := range []string{"38965996074", "11144477735", "52998224725"} {
		if err := Validate(value); err != nil {
			t.Fatalf("expected %s to be valid, got %v", value, err)
		}
	}
}

func TestValidateRejectsFlippedDigits(t *testing.T) {
	const valid = "38965996074"
	rejected := 0
	for pos := 0; pos < len(valid); pos++ {
		flipped := []byte(valid)
		flipped[pos] = '0' + (flipped[pos]-'0'+1)%10
		if err := Validate(string(flipped)); err != nil {
			rejected++
		}
	}
	// The mod-11 checksum catches every single-digit substitution.
	if rejected != len(valid) {
		t.Fatalf("expected all %d flips rejected, got %d", len(valid), rejected)
	}
}

func TestValidateRejectsMalformedInput(t *testing.T) {
	for _, value := range []string{"", "123", "3896599607a", "389659960740", "00000000000", "11111111111"} {
		if err := Validate(value); err == nil {
			t.Fatalf("expected %q to be rejected", value)
		}
	}
}

func TestParsePatientCode(t *testing.T) {
	code, err := ParsePatientCode("38965996074.20210101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code.CPF != "38965996074" {
		t.Fatalf("unexpected cpf %s", code.CPF)
	}
	if got := code.String(); got != "38965996074.20210101" {
		t.Fatalf("round trip mismatch: %s", got)
	}
}

func TestParsePatientCodeRejections(t *testing.T) {
	cases := []string{
		"38965996074",          // missing date part
		"38965996075.20210101", // bad checksum
		"38965996074.20211301", // month 13
		"38965996074.99991231", // future birth date
		"38965996074.2021-01",  // wrong date format
	}
	for _, value := range cases {
		if _, err := ParsePatientCode(value); err == nil {
			t.Fatalf("expected %q to be rejected", value)
		} else if !strings.Contains(err.Error(), "invalid patient code") {
			t.Fatalf("expected patient code error for %q, got %v", value, err)
		}
	}
}
