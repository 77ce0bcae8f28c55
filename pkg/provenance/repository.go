package provenance

import (
	"context"
	"time"

	"github.com/saudelink/platform/pkg/common/faults"
	"gorm.io/gorm"
)

// StaleRecord is one standardized record that is newer than its patient's
// merged row, annotated with where it came from.
type StaleRecord struct {
	ID                    string    `json:"id"`
	PatientCode           string    `json:"patient_code"`
	DataSourceCNES        string    `json:"data_source_cnes"`
	DataSourceSystem      string    `json:"data_source_system,omitempty"`
	DataSourceDescription string    `json:"data_source_description,omitempty"`
	SourceUpdatedAt       time.Time `json:"source_updated_at"` // event moment
	IngestedAt            time.Time `json:"ingested_at"`       // ingestion moment
	CreatedAt             time.Time `json:"created_at"`
}

// PatientGroup bundles every stale standardized record for one patient code.
type PatientGroup struct {
	PatientCode string        `json:"patient_code"`
	Records     []StaleRecord `json:"records"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// A standardized record is stale when the patient has no merged row yet or
// the merged row predates the standardized record's creation. The half-open
// window [start, end) applies to the standardized creation timestamp.
const staleFilter = `
	s.created_at >= ? AND s.created_at < ?
	AND (m.patient_code IS NULL OR m.updated_at < s.created_at)`

// CountStalePatients returns the distinct patient code total for the window.
// It runs independently of the paginated detail query so the page count
// stays stable across pages.
func (r *Repository) CountStalePatients(ctx context.Context, start, end time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(DISTINCT s.patient_code)
		FROM std_patient_records s
		LEFT JOIN merged_patients m ON m.patient_code = s.patient_code
		WHERE`+staleFilter, start, end).Scan(&total).Error
	if err != nil {
		return 0, faults.ClassifyPG(err)
	}
	return total, nil
}

// StalePatientCodes returns one page of patient codes in stable order.
func (r *Repository) StalePatientCodes(ctx context.Context, start, end time.Time, limit, offset int) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT s.patient_code
		FROM std_patient_records s
		LEFT JOIN merged_patients m ON m.patient_code = s.patient_code
		WHERE`+staleFilter+`
		ORDER BY s.patient_code
		LIMIT ? OFFSET ?`, start, end, limit, offset).Scan(&codes).Error
	if err != nil {
		return nil, faults.ClassifyPG(err)
	}
	return codes, nil
}

// StaleRecordsByCodes fans out to every standardized record of the paged
// patients, joined with its originating data source.
func (r *Repository) StaleRecordsByCodes(ctx context.Context, codes []string) ([]StaleRecord, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var records []StaleRecord
	err := r.db.WithContext(ctx).Raw(`
		SELECT s.id,
		       s.patient_code,
		       s.data_source_cnes,
		       d.system      AS data_source_system,
		       d.description AS data_source_description,
		       s.source_updated_at,
		       s.updated_at  AS ingested_at,
		       s.created_at
		FROM std_patient_records s
		LEFT JOIN data_sources d ON d.cnes = s.data_source_cnes
		WHERE s.patient_code IN ?
		ORDER BY s.patient_code, s.source_updated_at`, codes).Scan(&records).Error
	if err != nil {
		return nil, faults.ClassifyPG(err)
	}
	return records, nil
}
