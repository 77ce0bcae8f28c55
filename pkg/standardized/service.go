package standardized

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/kafka"
	"github.com/saudelink/platform/pkg/common/logger"
	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/cpf"
	"github.com/saudelink/platform/pkg/rawrecords"
	"github.com/saudelink/platform/pkg/refdata"
)

// RawStore is the slice of the raw tier standardization consumes: source
// lookups plus the one-way is_valid transition.
type RawStore interface {
	PatientRecordByID(ctx context.Context, id string) (*rawrecords.RawPatientRecord, error)
	PatientConditionByID(ctx context.Context, id string) (*rawrecords.RawPatientCondition, error)
	MarkPatientRecordValid(ctx context.Context, id string) error
	MarkPatientConditionValid(ctx context.Context, id string) error
}

type Service struct {
	validator *Validator
	repo      *Repository
	rawRepo   RawStore
	refRepo   *refdata.Repository
	producer  *kafka.Producer
	dlq       *kafka.Producer
}

func NewService(validator *Validator, repo *Repository, rawRepo RawStore, refRepo *refdata.Repository, producer *kafka.Producer, dlq *kafka.Producer) *Service {
	return &Service{
		validator: validator,
		repo:      repo,
		rawRepo:   rawRepo,
		refRepo:   refRepo,
		producer:  producer,
		dlq:       dlq,
	}
}

// StandardizePatients processes each input independently: one bad item is
// reported in its slot and never aborts the rest of the batch.
func (s *Service) StandardizePatients(ctx context.Context, inputs []models.StandardizePatientInput) (*models.StandardizeResponse, error) {
	resp := &models.StandardizeResponse{}
	for i, input := range inputs {
		record, err := s.standardizePatient(ctx, input)
		if err != nil {
			resp.Errors = append(resp.Errors, itemError(i, input.RawSourceID, err))
			continue
		}
		resp.Created = append(resp.Created, record.ID)
	}
	return resp, nil
}

func (s *Service) standardizePatient(ctx context.Context, input models.StandardizePatientInput) (*StandardizedPatientRecord, error) {
	birthDate, err := s.validator.ValidatePatientInput(input)
	if err != nil {
		return nil, err
	}

	raw, err := s.rawRepo.PatientRecordByID(ctx, input.RawSourceID)
	if err != nil {
		return nil, err
	}

	// The standardized CPF must equal the raw source's CPF. A mismatch means
	// the standardization job mixed up records; nothing is persisted.
	if input.PatientCPF != raw.PatientCPF {
		return nil, faults.Conflictf("CPF mismatch: standardized %s, raw source %s", input.PatientCPF, raw.PatientCPF)
	}

	if err := s.resolveBirthLocation(ctx, input); err != nil {
		return nil, err
	}

	addressList, err := encodeList(input.AddressList)
	if err != nil {
		return nil, fmt.Errorf("encoding address_list: %w", err)
	}
	telecomList, err := encodeList(input.TelecomList)
	if err != nil {
		return nil, fmt.Errorf("encoding telecom_list: %w", err)
	}
	cnsList, err := encodeList(input.CNSList)
	if err != nil {
		return nil, fmt.Errorf("encoding cns_list: %w", err)
	}

	record := &StandardizedPatientRecord{
		ID:              uuid.New().String(),
		RawSourceID:     raw.ID,
		PatientCPF:      input.PatientCPF,
		PatientCode:     input.PatientCode,
		DataSourceCNES:  raw.DataSourceCNES,
		SourceUpdatedAt: raw.SourceUpdatedAt,
		Name:            input.Name,
		MotherName:      input.MotherName,
		FatherName:      input.FatherName,
		BirthDate:       birthDate,
		BirthCityCode:   input.BirthCityCod,
		Gender:          input.Gender,
		Race:            input.Race,
		Nationality:     input.Nationality,
		Deceased:        input.Deceased,
		AddressList:     addressList,
		TelecomList:     telecomList,
		CNSList:         cnsList,
	}

	if err := s.repo.CreatePatientRecord(ctx, record); err != nil {
		return nil, err
	}

	if err := s.rawRepo.MarkPatientRecordValid(ctx, raw.ID); err != nil {
		logger.Log.WithError(err).WithField("raw_id", raw.ID).Error("failed to flag raw record valid")
	}

	s.publish(ctx, map[string]interface{}{
		"entity":       "patient-record",
		"std_id":       record.ID,
		"raw_id":       raw.ID,
		"patient_code": record.PatientCode,
		"patient_cpf":  record.PatientCPF,
		"cnes":         record.DataSourceCNES,
	})

	return record, nil
}

// resolveBirthLocation checks each supplied birth-location code against the
// reference hierarchy. Unresolvable codes are hard not-found rejections.
func (s *Service) resolveBirthLocation(ctx context.Context, input models.StandardizePatientInput) error {
	if input.BirthCityCod != "" {
		if _, err := s.refRepo.CityByCode(ctx, input.BirthCityCod); err != nil {
			return err
		}
	}
	if input.BirthStateCod != "" {
		if _, err := s.refRepo.StateByCode(ctx, input.BirthStateCod); err != nil {
			return err
		}
	}
	if input.BirthCountryCod != "" {
		if _, err := s.refRepo.CountryByCode(ctx, input.BirthCountryCod); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) StandardizeConditions(ctx context.Context, inputs []models.StandardizeConditionInput) (*models.StandardizeResponse, error) {
	resp := &models.StandardizeResponse{}
	for i, input := range inputs {
		condition, err := s.standardizeCondition(ctx, input)
		if err != nil {
			resp.Errors = append(resp.Errors, itemError(i, input.RawSourceID, err))
			continue
		}
		resp.Created = append(resp.Created, condition.ID)
	}
	return resp, nil
}

func (s *Service) standardizeCondition(ctx context.Context, input models.StandardizeConditionInput) (*StandardizedPatientCondition, error) {
	codeType, codeValue, date, err := s.validator.ValidateConditionInput(input)
	if err != nil {
		return nil, err
	}

	raw, err := s.rawRepo.PatientConditionByID(ctx, input.RawSourceID)
	if err != nil {
		return nil, err
	}
	if input.PatientCPF != raw.PatientCPF {
		return nil, faults.Conflictf("CPF mismatch: standardized %s, raw source %s", input.PatientCPF, raw.PatientCPF)
	}

	// A condition must reference an existing code in the reference table.
	if _, err := s.refRepo.ConditionCodeByValue(ctx, codeType, codeValue); err != nil {
		return nil, err
	}

	condition := &StandardizedPatientCondition{
		ID:              uuid.New().String(),
		RawSourceID:     raw.ID,
		PatientCPF:      input.PatientCPF,
		PatientCode:     input.PatientCode,
		DataSourceCNES:  raw.DataSourceCNES,
		SourceUpdatedAt: raw.SourceUpdatedAt,
		CodeType:        codeType,
		CodeValue:       codeValue,
		ClinicalStatus:  input.ClinicalStatus,
		Category:        input.Category,
		Date:            date,
	}

	if err := s.repo.CreateCondition(ctx, condition); err != nil {
		return nil, err
	}

	if err := s.rawRepo.MarkPatientConditionValid(ctx, raw.ID); err != nil {
		logger.Log.WithError(err).WithField("raw_id", raw.ID).Error("failed to flag raw condition valid")
	}

	s.publish(ctx, map[string]interface{}{
		"entity":       "patient-condition",
		"std_id":       condition.ID,
		"raw_id":       raw.ID,
		"patient_code": condition.PatientCode,
		"patient_cpf":  condition.PatientCPF,
		"cnes":         condition.DataSourceCNES,
	})

	return condition, nil
}

// ConditionsForPatient lists the standardized diagnoses for one patient,
// oldest event first.
func (s *Service) ConditionsForPatient(ctx context.Context, patientCode string) ([]StandardizedPatientCondition, error) {
	if err := cpf.ValidatePatientCode(patientCode); err != nil {
		return nil, faults.NewValidation("patient_code", err)
	}
	return s.repo.ConditionsByCode(ctx, patientCode)
}

func (s *Service) publish(ctx context.Context, data map[string]interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishEvent(ctx, "record-standardized", "standardizer-service", data); err != nil {
		logger.Log.WithError(err).Error("failed to publish record-standardized event")
		if s.dlq != nil {
			_ = s.dlq.PublishEvent(ctx, "record-standardized", "standardizer-service", data)
		}
	}
}

func itemError(index int, identifier string, err error) models.RecordError {
	field := ""
	var ve faults.ValidationError
	if errors.As(err, &ve) {
		field = ve.Field
	}
	return models.RecordError{
		Index:      index,
		Identifier: identifier,
		Field:      field,
		Reason:     err.Error(),
	}
}
