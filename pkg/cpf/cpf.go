// Package cpf validates the Brazilian individual taxpayer number (CPF) and
// the composite patient code the platform keys patients on.
package cpf

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCPF         = errors.New("invalid CPF")
	ErrInvalidPatientCode = errors.New("invalid patient code")
)

// Validate checks an 11-digit CPF against its two check digits. Formatting
// characters are not accepted; callers normalize before validating.
func Validate(value string) error {
	if len(value) != 11 {
		return fmt.Errorf("%w: expected 11 digits, got %d", ErrInvalidCPF, len(value))
	}
	digits := make([]int, 11)
	for i, r := range value {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: non-digit character at position %d", ErrInvalidCPF, i)
		}
		digits[i] = int(r - '0')
	}

	// CPFs with all digits equal pass the checksum but are reserved.
	allEqual := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return fmt.Errorf("%w: repeated digit sequence", ErrInvalidCPF)
	}

	if checkDigit(digits[:9]) != digits[9] || checkDigit(digits[:10]) != digits[10] {
		return fmt.Errorf("%w: checksum failure", ErrInvalidCPF)
	}
	return nil
}

// checkDigit computes the verification digit for the given prefix using the
// standard descending-weight modulus 11 scheme.
func checkDigit(prefix []int) int {
	weight := len(prefix) + 1
	sum := 0
	for _, d := range prefix {
		sum += d * weight
		weight--
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

// PatientCode is the composite patient identifier {cpf}.{birth_date:YYYYMMDD}.
type PatientCode struct {
	CPF       string
	BirthDate time.Time
}

func (c PatientCode) String() string {
	return c.CPF + "." + c.BirthDate.Format("20060102")
}

// ParsePatientCode validates the two dot-separated parts: part one must pass
// CPF validation, part two must be a calendar date not in the future.
func ParsePatientCode(value string) (PatientCode, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return PatientCode{}, fmt.Errorf("%w: expected cpf.YYYYMMDD, got %q", ErrInvalidPatientCode, value)
	}
	if err := Validate(parts[0]); err != nil {
		return PatientCode{}, fmt.Errorf("%w: %v", ErrInvalidPatientCode, err)
	}
	birth, err := time.Parse("20060102", parts[1])
	if err != nil {
		return PatientCode{}, fmt.Errorf("%w: bad birth date %q", ErrInvalidPatientCode, parts[1])
	}
	if birth.After(time.Now().UTC()) {
		return PatientCode{}, fmt.Errorf("%w: birth date %s is in the future", ErrInvalidPatientCode, parts[1])
	}
	return PatientCode{CPF: parts[0], BirthDate: birth}, nil
}

// ValidatePatientCode is the boolean-free convenience form used by request
// validators.
func ValidatePatientCode(value string) error {
	_, err := ParsePatientCode(value)
	return err
}
