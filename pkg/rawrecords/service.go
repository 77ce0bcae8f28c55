package rawrecords

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/kafka"
	"github.com/saudelink/platform/pkg/common/logger"
	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/formatters"
	"github.com/saudelink/platform/pkg/refdata"
	"gorm.io/datatypes"
)

type Service struct {
	validator *Validator
	repo      *Repository
	registry  *formatters.Registry
	producer  *kafka.Producer
	dlq       *kafka.Producer
}

func NewService(validator *Validator, repo *Repository, registry *formatters.Registry, producer *kafka.Producer, dlq *kafka.Producer) *Service {
	return &Service{
		validator: validator,
		repo:      repo,
		registry:  registry,
		producer:  producer,
		dlq:       dlq,
	}
}

// RegisterDataSource makes a facility known to the ingestion tier. The
// upsert ignores an existing CNES so re-registration is idempotent.
func (s *Service) RegisterDataSource(ctx context.Context, source DataSource) (*DataSource, error) {
	if source.CNES == "" {
		return nil, faults.Validationf("cnes", "cnes is required")
	}
	if err := refdata.ValidateSourceSystem(source.System); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertDataSource(ctx, &source); err != nil {
		return nil, err
	}
	return s.repo.DataSourceByCNES(ctx, source.CNES)
}

// IngestPatientRecords validates and upserts a batch for one facility. Each
// record is validated independently; rejects are reported per record and
// never abort the rest of the batch. An unknown CNES fails the whole request
// because every record in it is bound to that source.
func (s *Service) IngestPatientRecords(ctx context.Context, req models.RawIngestRequest) (*models.RawIngestResponse, error) {
	source, err := s.repo.DataSourceByCNES(ctx, req.CNES)
	if err != nil {
		return nil, err
	}

	rows := make([]RawPatientRecord, 0, len(req.Records))
	var recordErrors []models.RecordError

	for i, record := range req.Records {
		payload, err := s.prepare(source, formatters.EntityPatientRecord, record)
		if err != nil {
			recordErrors = append(recordErrors, recordError(i, record, err))
			continue
		}
		rows = append(rows, RawPatientRecord{
			ID:              uuid.New().String(),
			PatientCPF:      record.PatientCPF,
			PatientCode:     record.PatientCode,
			DataSourceCNES:  source.CNES,
			SourceUpdatedAt: record.SourceUpdatedAt.UTC(),
			SourceID:        record.SourceID,
			Payload:         datatypes.JSONMap(payload),
		})
	}

	count, err := s.repo.UpsertPatientRecords(ctx, rows)
	if err != nil {
		return nil, err
	}

	s.publishAccepted(ctx, "raw-received", formatters.EntityPatientRecord, source, rows)

	logger.Log.WithFields(map[string]interface{}{
		"cnes":     source.CNES,
		"accepted": len(rows),
		"rejected": len(recordErrors),
		"written":  count,
	}).Info("raw patient record batch ingested")

	return &models.RawIngestResponse{Count: count, Errors: recordErrors}, nil
}

func (s *Service) IngestPatientConditions(ctx context.Context, req models.RawIngestRequest) (*models.RawIngestResponse, error) {
	source, err := s.repo.DataSourceByCNES(ctx, req.CNES)
	if err != nil {
		return nil, err
	}

	rows := make([]RawPatientCondition, 0, len(req.Records))
	var recordErrors []models.RecordError

	for i, record := range req.Records {
		payload, err := s.prepare(source, formatters.EntityPatientCondition, record)
		if err != nil {
			recordErrors = append(recordErrors, recordError(i, record, err))
			continue
		}
		rows = append(rows, RawPatientCondition{
			ID:              uuid.New().String(),
			PatientCPF:      record.PatientCPF,
			PatientCode:     record.PatientCode,
			DataSourceCNES:  source.CNES,
			SourceUpdatedAt: record.SourceUpdatedAt.UTC(),
			SourceID:        record.SourceID,
			Payload:         datatypes.JSONMap(payload),
		})
	}

	count, err := s.repo.UpsertPatientConditions(ctx, rows)
	if err != nil {
		return nil, err
	}

	conditionRows := make([]RawPatientRecord, 0, len(rows))
	for _, row := range rows {
		conditionRows = append(conditionRows, RawPatientRecord(row))
	}
	s.publishAccepted(ctx, "raw-received", formatters.EntityPatientCondition, source, conditionRows)

	logger.Log.WithFields(map[string]interface{}{
		"cnes":     source.CNES,
		"rejected": len(recordErrors),
		"written":  count,
	}).Info("raw patient condition batch ingested")

	return &models.RawIngestResponse{Count: count, Errors: recordErrors}, nil
}

// prepare validates one record and runs the source system's formatter over
// its payload before storage.
func (s *Service) prepare(source *DataSource, entity string, record models.RawRecordInput) (map[string]interface{}, error) {
	if err := s.validator.ValidateRecord(record); err != nil {
		return nil, err
	}
	formatter, ok := s.registry.Resolve(source.System, entity)
	if !ok {
		return nil, faults.Validationf("data", "no formatter for source system %q", source.System)
	}
	payload, err := formatter(record.Data)
	if err != nil {
		return nil, faults.NewValidation("data", err)
	}
	if len(payload) == 0 {
		return nil, faults.Validationf("data", "payload empty after formatting")
	}
	return payload, nil
}

// publishAccepted emits one raw-received event per stored row. Publish
// failures do not fail ingestion; the row is already durable and the event
// goes to the DLQ for replay.
func (s *Service) publishAccepted(ctx context.Context, eventType, entity string, source *DataSource, rows []RawPatientRecord) {
	if s.producer == nil {
		return
	}
	for _, row := range rows {
		data := map[string]interface{}{
			"entity":       entity,
			"raw_id":       row.ID,
			"cnes":         source.CNES,
			"patient_code": row.PatientCode,
			"patient_cpf":  row.PatientCPF,
		}
		if err := s.producer.PublishEvent(ctx, eventType, "ingestion-service", data); err != nil {
			logger.Log.WithError(err).WithField("raw_id", row.ID).Error("failed to publish raw-received event")
			if s.dlq != nil {
				_ = s.dlq.PublishEvent(ctx, eventType, "ingestion-service", data)
			}
		}
	}
}

func recordError(index int, record models.RawRecordInput, err error) models.RecordError {
	identifier := record.SourceID
	if identifier == "" {
		identifier = record.PatientCode
	}
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
