package rawrecords

import (
	"context"
	"errors"
	"time"

	"github.com/saudelink/platform/pkg/common/faults"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&DataSource{}, &RawPatientRecord{}, &RawPatientCondition{})
}

func (r *Repository) DataSourceByCNES(ctx context.Context, cnes string) (*DataSource, error) {
	var source DataSource
	result := r.db.WithContext(ctx).First(&source, "cnes = ?", cnes)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, faults.NewNotFound("data source", cnes)
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &source, nil
}

// UpsertDataSource seeds reference facilities. Existing rows keep their
// description; the table is immutable reference data.
func (r *Repository) UpsertDataSource(ctx context.Context, source *DataSource) error {
	source.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(source).Error
}

var rawConflictColumns = []clause.Column{
	{Name: "patient_code"},
	{Name: "data_source_cnes"},
	{Name: "source_updated_at"},
}

// UpsertPatientRecords writes a batch in one statement. On conflict with the
// (patient_code, cnes, source_updated_at) key the payload and ingestion
// moment are overwritten, last writer wins; the database serializes racing
// ingests on the conflict key. The returned count is rows actually written.
func (r *Repository) UpsertPatientRecords(ctx context.Context, rows []RawPatientRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   rawConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"payload", "source_id", "updated_at"}),
	}).Create(&rows)
	if result.Error != nil {
		return 0, faults.ClassifyPG(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) UpsertPatientConditions(ctx context.Context, rows []RawPatientCondition) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   rawConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"payload", "source_id", "updated_at"}),
	}).Create(&rows)
	if result.Error != nil {
		return 0, faults.ClassifyPG(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) PatientRecordByID(ctx context.Context, id string) (*RawPatientRecord, error) {
	var record RawPatientRecord
	result := r.db.WithContext(ctx).First(&record, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, faults.NewNotFound("raw patient record", id)
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &record, nil
}

func (r *Repository) PatientConditionByID(ctx context.Context, id string) (*RawPatientCondition, error) {
	var record RawPatientCondition
	result := r.db.WithContext(ctx).First(&record, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, faults.NewNotFound("raw patient condition", id)
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &record, nil
}

// markValidAssignments is the whole write set of the consumption
// transition. updated_at is the ingestion moment and only the upsert path
// may move it.
func markValidAssignments() map[string]interface{} {
	valid := true
	return map[string]interface{}{"is_valid": &valid}
}

// MarkPatientRecordValid is the one-way is_valid transition taken when
// standardization consumes the record. Never reverted by this path.
func (r *Repository) MarkPatientRecordValid(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&RawPatientRecord{}).
		Where("id = ?", id).
		Updates(markValidAssignments()).Error
}

func (r *Repository) MarkPatientConditionValid(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&RawPatientCondition{}).
		Where("id = ?", id).
		Updates(markValidAssignments()).Error
}
