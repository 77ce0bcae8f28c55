package refdata

import (
	"strings"

	"github.com/saudelink/platform/pkg/common/faults"
)

// Closed wire-contract value sets. Unknown values are rejected at the
// boundary, before any lookup or persistence happens.

var Genders = []string{"male", "female", "unknown"}

var Races = []string{"branca", "preta", "parda", "amarela", "indigena"}

var Nationalities = []string{"B", "E", "N"}

var ClinicalStatuses = []string{"resolved", "resolving", "not_resolved"}

var ConditionCategories = []string{"problem-list-item", "encounter-diagnosis"}

var SourceSystems = []string{"vitacare", "vitai", "smsrio"}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

func validateEnum(field, value string, set []string) error {
	if !contains(set, value) {
		return faults.Validationf(field, "value %q not in {%s}", value, strings.Join(set, ", "))
	}
	return nil
}

func ValidateGender(value string) error {
	return validateEnum("gender", value, Genders)
}

func ValidateRace(value string) error {
	return validateEnum("race", value, Races)
}

func ValidateNationality(value string) error {
	return validateEnum("nationality", value, Nationalities)
}

func ValidateClinicalStatus(value string) error {
	return validateEnum("clinical_status", value, ClinicalStatuses)
}

func ValidateConditionCategory(value string) error {
	return validateEnum("category", value, ConditionCategories)
}

func ValidateSourceSystem(value string) error {
	return validateEnum("system", value, SourceSystems)
}
