package rawrecords

import (
	"time"

	"gorm.io/datatypes"
)

// DataSource is the facility pushing records, keyed by its CNES registry
// code. Immutable reference data.
type DataSource struct {
	CNES        string    `json:"cnes" gorm:"primaryKey;column:cnes"`
	System      string    `json:"system" gorm:"column:system"` // closed set, see refdata.SourceSystems
	Description string    `json:"description" gorm:"column:description"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (DataSource) TableName() string {
	return "data_sources"
}

// RawPatientRecord is an append-only, source-shaped payload. The payload is
// opaque here by design: every source system has its own schema. A resend of
// the same (patient_code, cnes, source_updated_at) overwrites payload and
// ingestion moment instead of duplicating the row. IsValid flips to true
// exactly once, when standardization consumes the record.
type RawPatientRecord struct {
	ID              string            `json:"id" gorm:"primaryKey;column:id"`
	PatientCPF      string            `json:"patient_cpf" gorm:"column:patient_cpf;index"`
	PatientCode     string            `json:"patient_code" gorm:"column:patient_code;uniqueIndex:idx_raw_patient_record_key"`
	DataSourceCNES  string            `json:"data_source_cnes" gorm:"column:data_source_cnes;uniqueIndex:idx_raw_patient_record_key"`
	SourceUpdatedAt time.Time         `json:"source_updated_at" gorm:"column:source_updated_at;uniqueIndex:idx_raw_patient_record_key"`
	SourceID        string            `json:"source_id,omitempty" gorm:"column:source_id"`
	Payload         datatypes.JSONMap `json:"payload" gorm:"column:payload"`
	IsValid         *bool             `json:"is_valid,omitempty" gorm:"column:is_valid"`
	CreatedBy       string            `json:"created_by,omitempty" gorm:"column:created_by"`
	CreatedAt       time.Time         `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"column:updated_at"` // ingestion moment
}

func (RawPatientRecord) TableName() string {
	return "raw_patient_records"
}

// RawPatientCondition mirrors RawPatientRecord for the condition feed. The
// two raw kinds are structurally identical but live in separate tables so
// each keeps its own conflict key and history.
type RawPatientCondition struct {
	ID              string            `json:"id" gorm:"primaryKey;column:id"`
	PatientCPF      string            `json:"patient_cpf" gorm:"column:patient_cpf;index"`
	PatientCode     string            `json:"patient_code" gorm:"column:patient_code;uniqueIndex:idx_raw_patient_condition_key"`
	DataSourceCNES  string            `json:"data_source_cnes" gorm:"column:data_source_cnes;uniqueIndex:idx_raw_patient_condition_key"`
	SourceUpdatedAt time.Time         `json:"source_updated_at" gorm:"column:source_updated_at;uniqueIndex:idx_raw_patient_condition_key"`
	SourceID        string            `json:"source_id,omitempty" gorm:"column:source_id"`
	Payload         datatypes.JSONMap `json:"payload" gorm:"column:payload"`
	IsValid         *bool             `json:"is_valid,omitempty" gorm:"column:is_valid"`
	CreatedBy       string            `json:"created_by,omitempty" gorm:"column:created_by"`
	CreatedAt       time.Time         `json:"created_at" gorm:"column:created_at"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"column:updated_at"` // ingestion moment
}

func (RawPatientCondition) TableName() string {
	return "raw_patient_conditions"
}
