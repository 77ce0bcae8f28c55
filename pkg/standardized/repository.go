package standardized

import (
	"context"
	"time"

	"github.com/saudelink/platform/pkg/common/faults"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&StandardizedPatientRecord{}, &StandardizedPatientCondition{})
}

func (r *Repository) CreatePatientRecord(ctx context.Context, record *StandardizedPatientRecord) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return faults.ClassifyPG(err)
	}
	return nil
}

func (r *Repository) CreateCondition(ctx context.Context, condition *StandardizedPatientCondition) error {
	condition.CreatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(condition).Error; err != nil {
		return faults.ClassifyPG(err)
	}
	return nil
}

// PatientRecordsByCode returns every standardized record for one patient in
// event-moment order, oldest first. The merge engine replays them in this
// order so the newest source wins each contested field.
func (r *Repository) PatientRecordsByCode(ctx context.Context, patientCode string) ([]StandardizedPatientRecord, error) {
	var records []StandardizedPatientRecord
	result := r.db.WithContext(ctx).
		Where("patient_code = ?", patientCode).
		Order("source_updated_at ASC").
		Find(&records)
	return records, result.Error
}

func (r *Repository) ConditionsByCode(ctx context.Context, patientCode string) ([]StandardizedPatientCondition, error) {
	var conditions []StandardizedPatientCondition
	result := r.db.WithContext(ctx).
		Where("patient_code = ?", patientCode).
		Order("source_updated_at ASC").
		Find(&conditions)
	return conditions, result.Error
}
