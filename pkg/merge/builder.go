package merge

import (
	"time"

	"github.com/google/uuid"
	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/fingerprint"
	"github.com/saudelink/platform/pkg/standardized"
)

const dateLayout = "2006-01-02"

// BuildInput projects a standardized record onto the merge input shape.
// Empty source fields become nil pointers so replaying an older record
// never blanks out a value a newer source already supplied.
func BuildInput(record *standardized.StandardizedPatientRecord) (models.MergePatientInput, error) {
	input := models.MergePatientInput{
		PatientCode: record.PatientCode,
		PatientCPF:  record.PatientCPF,
	}
	input.Name = optional(record.Name)
	input.MotherName = optional(record.MotherName)
	input.FatherName = optional(record.FatherName)
	input.BirthCityCod = optional(record.BirthCityCode)
	input.Gender = optional(record.Gender)
	input.Race = optional(record.Race)
	input.Nationality = optional(record.Nationality)
	input.Deceased = record.Deceased
	if !record.BirthDate.IsZero() {
		formatted := record.BirthDate.Format(dateLayout)
		input.BirthDate = &formatted
	}

	var err error
	if input.AddressList, err = record.Addresses(); err != nil {
		return input, err
	}
	if input.TelecomList, err = record.Telecoms(); err != nil {
		return input, err
	}
	if input.CNSList, err = record.CNSNumbers(); err != nil {
		return input, err
	}
	return input, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// assemblePatient builds the golden row plus the set of columns the upsert
// may touch. Absent fields stay out of the column set so the conflict
// clause leaves their persisted values alone.
func assemblePatient(input models.MergePatientInput) (MergedPatient, []string, error) {
	patient := MergedPatient{
		PatientCode: input.PatientCode,
		PatientCPF:  input.PatientCPF,
	}
	columns := []string{"patient_cpf"}

	if input.Name != nil {
		patient.Name = *input.Name
		columns = append(columns, "name")
	}
	if input.MotherName != nil {
		patient.MotherName = *input.MotherName
		columns = append(columns, "mother_name")
	}
	if input.FatherName != nil {
		patient.FatherName = *input.FatherName
		columns = append(columns, "father_name")
	}
	if input.BirthDate != nil {
		birthDate, err := time.Parse(dateLayout, *input.BirthDate)
		if err != nil {
			return patient, nil, faults.Validationf("birth_date", "expected YYYY-MM-DD, got %q", *input.BirthDate)
		}
		patient.BirthDate = &birthDate
		columns = append(columns, "birth_date")
	}
	if input.BirthCityCod != nil {
		patient.BirthCityCode = *input.BirthCityCod
		columns = append(columns, "birth_city_code")
	}
	if input.Gender != nil {
		patient.GenderSlug = *input.Gender
		columns = append(columns, "gender_slug")
	}
	if input.Race != nil {
		patient.RaceSlug = *input.Race
		columns = append(columns, "race_slug")
	}
	if input.Nationality != nil {
		patient.NationalitySlug = *input.Nationality
		columns = append(columns, "nationality_slug")
	}
	if input.Deceased != nil {
		patient.Deceased = input.Deceased
		columns = append(columns, "deceased")
	}
	return patient, columns, nil
}

// Fingerprints are computed over the non-empty fields of each incoming
// entry, so a field omitted and a field sent empty hash identically.

type fingerprintedAddress struct {
	Fingerprint string
	Input       models.AddressInput
}

type fingerprintedTelecom struct {
	Fingerprint string
	Input       models.TelecomInput
}

type fingerprintedCNS struct {
	Fingerprint string
	Input       models.CNSInput
}

func fingerprintAddresses(list []models.AddressInput) ([]fingerprintedAddress, error) {
	out := make([]fingerprintedAddress, 0, len(list))
	for _, item := range list {
		fp, err := fingerprint.Compute(addressPayload(item))
		if err != nil {
			return nil, err
		}
		out = append(out, fingerprintedAddress{Fingerprint: fp, Input: item})
	}
	return out, nil
}

func fingerprintTelecoms(list []models.TelecomInput) ([]fingerprintedTelecom, error) {
	out := make([]fingerprintedTelecom, 0, len(list))
	for _, item := range list {
		fp, err := fingerprint.Compute(telecomPayload(item))
		if err != nil {
			return nil, err
		}
		out = append(out, fingerprintedTelecom{Fingerprint: fp, Input: item})
	}
	return out, nil
}

func fingerprintHealthCards(list []models.CNSInput) ([]fingerprintedCNS, error) {
	out := make([]fingerprintedCNS, 0, len(list))
	for _, item := range list {
		fp, err := fingerprint.Compute(cnsPayload(item))
		if err != nil {
			return nil, err
		}
		out = append(out, fingerprintedCNS{Fingerprint: fp, Input: item})
	}
	return out, nil
}

func addressPayload(a models.AddressInput) map[string]interface{} {
	payload := map[string]interface{}{}
	putNonEmpty(payload, "use", a.Use)
	putNonEmpty(payload, "type", a.Type)
	putNonEmpty(payload, "line", a.Line)
	putNonEmpty(payload, "number", a.Number)
	putNonEmpty(payload, "complement", a.Complement)
	putNonEmpty(payload, "district", a.District)
	putNonEmpty(payload, "city_cod", a.CityCod)
	putNonEmpty(payload, "state_cod", a.StateCod)
	putNonEmpty(payload, "postal_code", a.PostalCode)
	putNonEmpty(payload, "period_start", a.PeriodStart)
	putNonEmpty(payload, "period_end", a.PeriodEnd)
	return payload
}

func telecomPayload(t models.TelecomInput) map[string]interface{} {
	payload := map[string]interface{}{}
	putNonEmpty(payload, "system", t.System)
	putNonEmpty(payload, "value", t.Value)
	putNonEmpty(payload, "use", t.Use)
	if t.Rank > 0 {
		payload["rank"] = t.Rank
	}
	putNonEmpty(payload, "period_start", t.PeriodStart)
	putNonEmpty(payload, "period_end", t.PeriodEnd)
	return payload
}

func cnsPayload(c models.CNSInput) map[string]interface{} {
	payload := map[string]interface{}{
		"value":   c.Value,
		"is_main": c.IsMain,
	}
	putNonEmpty(payload, "period_start", c.PeriodStart)
	putNonEmpty(payload, "period_end", c.PeriodEnd)
	return payload
}

func putNonEmpty(payload map[string]interface{}, key, value string) {
	if value != "" {
		payload[key] = value
	}
}

func newMergedAddress(patientCode string, item fingerprintedAddress) (MergedAddress, error) {
	start, err := parsePeriod("period_start", item.Input.PeriodStart)
	if err != nil {
		return MergedAddress{}, err
	}
	end, err := parsePeriod("period_end", item.Input.PeriodEnd)
	if err != nil {
		return MergedAddress{}, err
	}
	return MergedAddress{
		ID:          uuid.New().String(),
		PatientCode: patientCode,
		Fingerprint: item.Fingerprint,
		Use:         item.Input.Use,
		Type:        item.Input.Type,
		Line:        item.Input.Line,
		Number:      item.Input.Number,
		Complement:  item.Input.Complement,
		District:    item.Input.District,
		CityCode:    item.Input.CityCod,
		StateCode:   item.Input.StateCod,
		PostalCode:  item.Input.PostalCode,
		PeriodStart: start,
		PeriodEnd:   end,
	}, nil
}

func newMergedTelecom(patientCode string, item fingerprintedTelecom) (MergedTelecom, error) {
	start, err := parsePeriod("period_start", item.Input.PeriodStart)
	if err != nil {
		return MergedTelecom{}, err
	}
	end, err := parsePeriod("period_end", item.Input.PeriodEnd)
	if err != nil {
		return MergedTelecom{}, err
	}
	if item.Input.System == "" || item.Input.Value == "" {
		return MergedTelecom{}, faults.Validationf("telecom_list", "system and value are required")
	}
	return MergedTelecom{
		ID:          uuid.New().String(),
		PatientCode: patientCode,
		Fingerprint: item.Fingerprint,
		System:      item.Input.System,
		Value:       item.Input.Value,
		Use:         item.Input.Use,
		Rank:        item.Input.Rank,
		PeriodStart: start,
		PeriodEnd:   end,
	}, nil
}

func newMergedHealthCard(patientCode string, item fingerprintedCNS) (MergedHealthCard, error) {
	if item.Input.Value == "" {
		return MergedHealthCard{}, faults.Validationf("cns_list", "value is required")
	}
	start, err := parsePeriod("period_start", item.Input.PeriodStart)
	if err != nil {
		return MergedHealthCard{}, err
	}
	end, err := parsePeriod("period_end", item.Input.PeriodEnd)
	if err != nil {
		return MergedHealthCard{}, err
	}
	return MergedHealthCard{
		ID:          uuid.New().String(),
		PatientCode: patientCode,
		Fingerprint: item.Fingerprint,
		Value:       item.Input.Value,
		IsMain:      item.Input.IsMain,
		PeriodStart: start,
		PeriodEnd:   end,
	}, nil
}

func parsePeriod(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, faults.Validationf(field, "expected YYYY-MM-DD, got %q", value)
	}
	return &parsed, nil
}
