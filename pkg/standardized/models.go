package standardized

import (
	"encoding/json"
	"time"

	"github.com/saudelink/platform/pkg/common/models"
	"gorm.io/datatypes"
)

// StandardizedPatientRecord is the canonical single-source shape derived from
// exactly one raw record. The event moment and owning CNES are denormalized
// from the raw source so downstream ordering and provenance reads do not fan
// out to the raw tier. Immutable once created.
type StandardizedPatientRecord struct {
	ID              string         `json:"id" gorm:"primaryKey;column:id"`
	RawSourceID     string         `json:"raw_source_id" gorm:"column:raw_source_id;index"`
	PatientCPF      string         `json:"patient_cpf" gorm:"column:patient_cpf;index"`
	PatientCode     string         `json:"patient_code" gorm:"column:patient_code;index"`
	DataSourceCNES  string         `json:"data_source_cnes" gorm:"column:data_source_cnes"`
	SourceUpdatedAt time.Time      `json:"source_updated_at" gorm:"column:source_updated_at"`
	Name            string         `json:"name" gorm:"column:name"`
	MotherName      string         `json:"mother_name,omitempty" gorm:"column:mother_name"`
	FatherName      string         `json:"father_name,omitempty" gorm:"column:father_name"`
	BirthDate       time.Time      `json:"birth_date" gorm:"column:birth_date"`
	BirthCityCode   string         `json:"birth_city_code,omitempty" gorm:"column:birth_city_code"`
	Gender          string         `json:"gender" gorm:"column:gender"`
	Race            string         `json:"race,omitempty" gorm:"column:race"`
	Nationality     string         `json:"nationality,omitempty" gorm:"column:nationality"`
	Deceased        *bool          `json:"deceased,omitempty" gorm:"column:deceased"`
	AddressList     datatypes.JSON `json:"address_list,omitempty" gorm:"column:address_list"`
	TelecomList     datatypes.JSON `json:"telecom_list,omitempty" gorm:"column:telecom_list"`
	CNSList         datatypes.JSON `json:"cns_list,omitempty" gorm:"column:cns_list"`
	CreatedAt       time.Time      `json:"created_at" gorm:"column:created_at;index"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"column:updated_at"` // ingestion moment
}

func (StandardizedPatientRecord) TableName() string {
	return "std_patient_records"
}

// Addresses decodes the embedded list into its typed form. The merge engine
// only ever sees typed sub-entities, never raw JSON.
func (r *StandardizedPatientRecord) Addresses() ([]models.AddressInput, error) {
	return decodeList[models.AddressInput](r.AddressList)
}

func (r *StandardizedPatientRecord) Telecoms() ([]models.TelecomInput, error) {
	return decodeList[models.TelecomInput](r.TelecomList)
}

func (r *StandardizedPatientRecord) CNSNumbers() ([]models.CNSInput, error) {
	return decodeList[models.CNSInput](r.CNSList)
}

func decodeList[T any](raw datatypes.JSON) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func encodeList(value interface{}) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// StandardizedPatientCondition is a diagnosis standardized from one raw
// condition record, carrying a validated CID or CIAP code reference.
type StandardizedPatientCondition struct {
	ID              string     `json:"id" gorm:"primaryKey;column:id"`
	RawSourceID     string     `json:"raw_source_id" gorm:"column:raw_source_id;index"`
	PatientCPF      string     `json:"patient_cpf" gorm:"column:patient_cpf;index"`
	PatientCode     string     `json:"patient_code" gorm:"column:patient_code;index"`
	DataSourceCNES  string     `json:"data_source_cnes" gorm:"column:data_source_cnes"`
	SourceUpdatedAt time.Time  `json:"source_updated_at" gorm:"column:source_updated_at"`
	CodeType        string     `json:"code_type" gorm:"column:code_type"` // cid or ciap
	CodeValue       string     `json:"code_value" gorm:"column:code_value"`
	ClinicalStatus  string     `json:"clinical_status" gorm:"column:clinical_status"`
	Category        string     `json:"category" gorm:"column:category"`
	Date            *time.Time `json:"date,omitempty" gorm:"column:date"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at;index"`
}

func (StandardizedPatientCondition) TableName() string {
	return "std_patient_conditions"
}
