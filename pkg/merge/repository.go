package merge

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
	return r.db.AutoMigrate(&MergedPatient{}, &MergedAddress{}, &MergedTelecom{}, &MergedHealthCard{})
}

// LoadPatientAggregate returns the golden record with all three
// sub-collections populated. NotFound when no merged patient exists yet.
func (r *Repository) LoadPatientAggregate(ctx context.Context, patientCode string) (*PatientAggregate, error) {
	var patient MergedPatient
	result := r.db.WithContext(ctx).First(&patient, "patient_code = ?", patientCode)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, faults.NewNotFound("merged patient", patientCode)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	aggregate := &PatientAggregate{Patient: patient}
	if err := r.db.WithContext(ctx).Where("patient_code = ?", patientCode).Find(&aggregate.Addresses).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("patient_code = ?", patientCode).Find(&aggregate.Telecoms).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("patient_code = ?", patientCode).Find(&aggregate.HealthCards).Error; err != nil {
		return nil, err
	}
	return aggregate, nil
}

// Plan is the precomputed write set for one patient merge. Nil insert/delete
// pairs mean that sub-collection was not part of the input and stays
// untouched.
type Plan struct {
	Patient       MergedPatient
	UpdateColumns []string // scalar columns present in the input

	DeleteAddressIDs    []string
	InsertAddresses     []MergedAddress
	DeleteTelecomIDs    []string
	InsertTelecoms      []MergedTelecom
	DeleteHealthCardIDs []string
	InsertHealthCards   []MergedHealthCard
}

// Apply commits the whole plan in a single transaction: patient upsert, then
// the sub-collection deletions and insertions. Any failure rolls the entire
// patient merge back; no partial reconciliation is ever visible.
func (r *Repository) Apply(ctx context.Context, plan *Plan) error {
	now := time.Now().UTC()
	plan.Patient.CreatedAt = now
	plan.Patient.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := append([]string{}, plan.UpdateColumns...)
		columns = append(columns, "updated_at")
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "patient_code"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).Create(&plan.Patient).Error; err != nil {
			return err
		}

		if len(plan.DeleteAddressIDs) > 0 {
			if err := tx.Where("id IN ?", plan.DeleteAddressIDs).Delete(&MergedAddress{}).Error; err != nil {
				return err
			}
		}
		if len(plan.InsertAddresses) > 0 {
			for i := range plan.InsertAddresses {
				plan.InsertAddresses[i].CreatedAt = now
			}
			if err := tx.Create(&plan.InsertAddresses).Error; err != nil {
				return err
			}
		}

		if len(plan.DeleteTelecomIDs) > 0 {
			if err := tx.Where("id IN ?", plan.DeleteTelecomIDs).Delete(&MergedTelecom{}).Error; err != nil {
				return err
			}
		}
		if len(plan.InsertTelecoms) > 0 {
			for i := range plan.InsertTelecoms {
				plan.InsertTelecoms[i].CreatedAt = now
			}
			if err := tx.Create(&plan.InsertTelecoms).Error; err != nil {
				return err
			}
		}

		if len(plan.DeleteHealthCardIDs) > 0 {
			if err := tx.Where("id IN ?", plan.DeleteHealthCardIDs).Delete(&MergedHealthCard{}).Error; err != nil {
				return err
			}
		}
		if len(plan.InsertHealthCards) > 0 {
			for i := range plan.InsertHealthCards {
				plan.InsertHealthCards[i].CreatedAt = now
			}
			if err := tx.Create(&plan.InsertHealthCards).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return faults.ClassifyPG(err)
}
