package models

import "time"

// Event is the envelope every pipeline stage publishes on the bus.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // raw-received, record-standardized, patient-merged
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// RecordError reports one rejected record out of a batch, with enough
// context for the caller to fix and resend it.
type RecordError struct {
	Index      int    `json:"index"`
	Identifier string `json:"identifier,omitempty"`
	Field      string `json:"field,omitempty"`
	Reason     string `json:"reason"`
}

// Raw tier -----------------------------------------------------------------

type RawRecordInput struct {
	PatientCPF      string                 `json:"patient_cpf"`
	PatientCode     string                 `json:"patient_code"`
	SourceUpdatedAt time.Time              `json:"source_updated_at"`
	SourceID        string                 `json:"source_id,omitempty"`
	Data            map[string]interface{} `json:"data"`
}

type RawIngestRequest struct {
	CNES    string           `json:"cnes"`
	Records []RawRecordInput `json:"records"`
}

type RawIngestResponse struct {
	// Count is the number of rows actually written: freshly inserted or
	// overwritten by the conflict clause. Rejected records are excluded.
	Count  int64         `json:"count"`
	Errors []RecordError `json:"errors,omitempty"`
}

// Standardized tier --------------------------------------------------------

type AddressInput struct {
	Use         string `json:"use,omitempty"`
	Type        string `json:"type,omitempty"`
	Line        string `json:"line"`
	Number      string `json:"number,omitempty"`
	Complement  string `json:"complement,omitempty"`
	District    string `json:"district,omitempty"`
	CityCod     string `json:"city_cod,omitempty"`
	StateCod    string `json:"state_cod,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`
}

type TelecomInput struct {
	System      string `json:"system"`
	Value       string `json:"value"`
	Use         string `json:"use,omitempty"`
	Rank        int    `json:"rank,omitempty"`
	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`
}

type CNSInput struct {
	Value       string `json:"value"`
	IsMain      bool   `json:"is_main"`
	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`
}

type StandardizePatientInput struct {
	RawSourceID     string         `json:"raw_source_id"`
	PatientCPF      string         `json:"patient_cpf"`
	PatientCode     string         `json:"patient_code"`
	Name            string         `json:"name"`
	MotherName      string         `json:"mother_name,omitempty"`
	FatherName      string         `json:"father_name,omitempty"`
	BirthDate       string         `json:"birth_date"` // YYYY-MM-DD
	BirthCityCod    string         `json:"birth_city_cod,omitempty"`
	BirthStateCod   string         `json:"birth_state_cod,omitempty"`
	BirthCountryCod string         `json:"birth_country_cod,omitempty"`
	Gender          string         `json:"gender"`
	Race            string         `json:"race,omitempty"`
	Nationality     string         `json:"nationality,omitempty"`
	Deceased        *bool          `json:"deceased,omitempty"`
	AddressList     []AddressInput `json:"address_list,omitempty"`
	TelecomList     []TelecomInput `json:"telecom_list,omitempty"`
	CNSList         []CNSInput     `json:"cns_list,omitempty"`
}

type StandardizeConditionInput struct {
	RawSourceID    string `json:"raw_source_id"`
	PatientCPF     string `json:"patient_cpf"`
	PatientCode    string `json:"patient_code"`
	Cid            string `json:"cid,omitempty"`
	Ciap           string `json:"ciap,omitempty"`
	ClinicalStatus string `json:"clinical_status"`
	Category       string `json:"category"`
	Date           string `json:"date,omitempty"` // YYYY-MM-DD
}

type StandardizeResponse struct {
	Created []string      `json:"created"` // standardized record ids
	Errors  []RecordError `json:"errors,omitempty"`
}

// Merge tier ---------------------------------------------------------------

// MergePatientInput uses pointers for scalar demographics: a nil field is
// absent and never overwrites the merged value. A nil list leaves that
// sub-collection untouched; an empty list clears it.
type MergePatientInput struct {
	PatientCode  string         `json:"patient_code"`
	PatientCPF   string         `json:"patient_cpf"`
	Name         *string        `json:"name,omitempty"`
	MotherName   *string        `json:"mother_name,omitempty"`
	FatherName   *string        `json:"father_name,omitempty"`
	BirthDate    *string        `json:"birth_date,omitempty"` // YYYY-MM-DD
	BirthCityCod *string        `json:"birth_city_cod,omitempty"`
	Gender       *string        `json:"gender,omitempty"`
	Race         *string        `json:"race,omitempty"`
	Nationality  *string        `json:"nationality,omitempty"`
	Deceased     *bool          `json:"deceased,omitempty"`
	AddressList  []AddressInput `json:"address_list,omitempty"`
	TelecomList  []TelecomInput `json:"telecom_list,omitempty"`
	CNSList      []CNSInput     `json:"cns_list,omitempty"`
}

type MergeBatchResponse struct {
	Merged []string      `json:"merged"` // patient codes committed
	Errors []RecordError `json:"errors,omitempty"`
}

// Pagination ---------------------------------------------------------------

type Paginated struct {
	Items       interface{} `json:"items"`
	CurrentPage int         `json:"current_page"`
	PageCount   int         `json:"page_count"`
}
