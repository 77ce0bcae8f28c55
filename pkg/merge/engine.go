package merge

import (
	"context"
	"sync"
	"time"

	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/kafka"
	"github.com/saudelink/platform/pkg/common/logger"
	"github.com/saudelink/platform/pkg/common/models"
	"github.com/saudelink/platform/pkg/cpf"
	"github.com/saudelink/platform/pkg/reconcile"
	"github.com/saudelink/platform/pkg/refdata"
	"github.com/saudelink/platform/pkg/standardized"
	"golang.org/x/sync/errgroup"
)

type Engine struct {
	repo        *Repository
	refRepo     *refdata.Repository
	stdRepo     *standardized.Repository
	producer    *kafka.Producer
	dlq         *kafka.Producer
	concurrency int
}

func NewEngine(repo *Repository, refRepo *refdata.Repository, stdRepo *standardized.Repository, producer *kafka.Producer, dlq *kafka.Producer, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Engine{
		repo:        repo,
		refRepo:     refRepo,
		stdRepo:     stdRepo,
		producer:    producer,
		dlq:         dlq,
		concurrency: concurrency,
	}
}

// MergePatient folds one input into the golden record for its patient code.
// Nil scalars never overwrite persisted values; nil lists leave their
// sub-collection untouched; supplied lists are reconciled by fingerprint
// diff so unchanged rows incur zero writes. The whole merge commits in one
// transaction.
func (e *Engine) MergePatient(ctx context.Context, input models.MergePatientInput) (*PatientAggregate, error) {
	if err := e.validateInput(input); err != nil {
		return nil, err
	}

	if err := e.resolveLookups(ctx, input); err != nil {
		return nil, err
	}

	current, err := e.repo.LoadPatientAggregate(ctx, input.PatientCode)
	if err != nil {
		if !faults.IsNotFound(err) {
			return nil, err
		}
		current = &PatientAggregate{}
	}

	plan, err := e.buildPlan(ctx, input, current)
	if err != nil {
		return nil, err
	}

	if err := e.repo.Apply(ctx, plan); err != nil {
		return nil, err
	}

	merged, err := e.repo.LoadPatientAggregate(ctx, input.PatientCode)
	if err != nil {
		return nil, err
	}

	e.publishMerged(ctx, merged)
	return merged, nil
}

// MergeBatch runs each patient independently and concurrently. One patient's
// failure never aborts the others; committed merges stay committed even if
// the caller goes away mid-batch.
func (e *Engine) MergeBatch(ctx context.Context, inputs []models.MergePatientInput) *models.MergeBatchResponse {
	resp := &models.MergeBatchResponse{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			_, err := e.MergePatient(gctx, input)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Errors = append(resp.Errors, models.RecordError{
					Index:      i,
					Identifier: input.PatientCode,
					Reason:     err.Error(),
				})
				return nil
			}
			resp.Merged = append(resp.Merged, input.PatientCode)
			return nil
		})
	}
	_ = g.Wait()
	return resp
}

// MergeFromStandardized replays every standardized record for the patient
// oldest first, so the most recent source wins any contested field. Called
// by the pipeline consumer whenever a record-standardized event arrives.
func (e *Engine) MergeFromStandardized(ctx context.Context, patientCode string) (*PatientAggregate, error) {
	records, err := e.stdRepo.PatientRecordsByCode(ctx, patientCode)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, faults.NewNotFound("standardized patient record", patientCode)
	}

	var aggregate *PatientAggregate
	for i := range records {
		input, err := BuildInput(&records[i])
		if err != nil {
			return nil, err
		}
		if aggregate, err = e.MergePatient(ctx, input); err != nil {
			return nil, err
		}
	}
	return aggregate, nil
}

// GetPatient returns the golden record with its sub-collections.
func (e *Engine) GetPatient(ctx context.Context, patientCode string) (*PatientAggregate, error) {
	if _, err := cpf.ParsePatientCode(patientCode); err != nil {
		return nil, faults.NewValidation("patient_code", err)
	}
	return e.repo.LoadPatientAggregate(ctx, patientCode)
}

func (e *Engine) validateInput(input models.MergePatientInput) error {
	if err := cpf.Validate(input.PatientCPF); err != nil {
		return faults.NewValidation("patient_cpf", err)
	}
	code, err := cpf.ParsePatientCode(input.PatientCode)
	if err != nil {
		return faults.NewValidation("patient_code", err)
	}
	if code.CPF != input.PatientCPF {
		return faults.Validationf("patient_code", "code does not carry patient_cpf %s", input.PatientCPF)
	}
	if input.Gender != nil {
		if err := refdata.ValidateGender(*input.Gender); err != nil {
			return err
		}
	}
	if input.Race != nil {
		if err := refdata.ValidateRace(*input.Race); err != nil {
			return err
		}
	}
	if input.Nationality != nil {
		if err := refdata.ValidateNationality(*input.Nationality); err != nil {
			return err
		}
	}
	if input.BirthDate != nil {
		if _, err := time.Parse(dateLayout, *input.BirthDate); err != nil {
			return faults.Validationf("birth_date", "expected YYYY-MM-DD, got %q", *input.BirthDate)
		}
	}
	return nil
}

// resolveLookups resolves the supplied demographic references concurrently;
// they are independent of each other, but all must resolve before assembly.
func (e *Engine) resolveLookups(ctx context.Context, input models.MergePatientInput) error {
	g, gctx := errgroup.WithContext(ctx)
	if input.Gender != nil {
		gender := *input.Gender
		g.Go(func() error {
			_, err := e.refRepo.GenderBySlug(gctx, gender)
			return err
		})
	}
	if input.Race != nil {
		race := *input.Race
		g.Go(func() error {
			_, err := e.refRepo.RaceBySlug(gctx, race)
			return err
		})
	}
	if input.Nationality != nil {
		nationality := *input.Nationality
		g.Go(func() error {
			_, err := e.refRepo.NationalityBySlug(gctx, nationality)
			return err
		})
	}
	if input.BirthCityCod != nil {
		city := *input.BirthCityCod
		g.Go(func() error {
			_, err := e.refRepo.CityByCode(gctx, city)
			return err
		})
	}
	return g.Wait()
}

func (e *Engine) buildPlan(ctx context.Context, input models.MergePatientInput, current *PatientAggregate) (*Plan, error) {
	patient, columns, err := assemblePatient(input)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Patient: patient, UpdateColumns: columns}

	if input.AddressList != nil {
		if err := e.planAddresses(ctx, input, current.Addresses, plan); err != nil {
			return nil, err
		}
	}
	if input.TelecomList != nil {
		if err := planTelecoms(input, current.Telecoms, plan); err != nil {
			return nil, err
		}
	}
	if input.CNSList != nil {
		if err := planHealthCards(input, current.HealthCards, plan); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (e *Engine) planAddresses(ctx context.Context, input models.MergePatientInput, current []MergedAddress, plan *Plan) error {
	incoming, err := fingerprintAddresses(input.AddressList)
	if err != nil {
		return err
	}
	toDelete, toInsert := reconcile.Diff(current, incoming,
		func(a MergedAddress) string { return a.Fingerprint },
		func(p fingerprintedAddress) string { return p.Fingerprint },
	)
	for _, row := range toDelete {
		plan.DeleteAddressIDs = append(plan.DeleteAddressIDs, row.ID)
	}
	for _, item := range toInsert {
		// Only rows actually being inserted need their city reference
		// resolved; surviving rows were validated when first written.
		if item.Input.CityCod != "" {
			if _, err := e.refRepo.CityByCode(ctx, item.Input.CityCod); err != nil {
				return err
			}
		}
		row, err := newMergedAddress(input.PatientCode, item)
		if err != nil {
			return err
		}
		plan.InsertAddresses = append(plan.InsertAddresses, row)
	}
	return nil
}

func planTelecoms(input models.MergePatientInput, current []MergedTelecom, plan *Plan) error {
	incoming, err := fingerprintTelecoms(input.TelecomList)
	if err != nil {
		return err
	}
	toDelete, toInsert := reconcile.Diff(current, incoming,
		func(t MergedTelecom) string { return t.Fingerprint },
		func(p fingerprintedTelecom) string { return p.Fingerprint },
	)
	for _, row := range toDelete {
		plan.DeleteTelecomIDs = append(plan.DeleteTelecomIDs, row.ID)
	}
	for _, item := range toInsert {
		row, err := newMergedTelecom(input.PatientCode, item)
		if err != nil {
			return err
		}
		plan.InsertTelecoms = append(plan.InsertTelecoms, row)
	}
	return nil
}

func planHealthCards(input models.MergePatientInput, current []MergedHealthCard, plan *Plan) error {
	incoming, err := fingerprintHealthCards(input.CNSList)
	if err != nil {
		return err
	}
	toDelete, toInsert := reconcile.Diff(current, incoming,
		func(c MergedHealthCard) string { return c.Fingerprint },
		func(p fingerprintedCNS) string { return p.Fingerprint },
	)
	for _, row := range toDelete {
		plan.DeleteHealthCardIDs = append(plan.DeleteHealthCardIDs, row.ID)
	}
	for _, item := range toInsert {
		row, err := newMergedHealthCard(input.PatientCode, item)
		if err != nil {
			return err
		}
		plan.InsertHealthCards = append(plan.InsertHealthCards, row)
	}
	return nil
}

func (e *Engine) publishMerged(ctx context.Context, aggregate *PatientAggregate) {
	if e.producer == nil {
		return
	}
	data := map[string]interface{}{
		"patient_code": aggregate.Patient.PatientCode,
		"patient_cpf":  aggregate.Patient.PatientCPF,
		"addresses":    len(aggregate.Addresses),
		"telecoms":     len(aggregate.Telecoms),
		"health_cards": len(aggregate.HealthCards),
	}
	if err := e.producer.PublishEvent(ctx, "patient-merged", "merge-service", data); err != nil {
		logger.Log.WithError(err).WithField("patient_code", aggregate.Patient.PatientCode).Error("failed to publish patient-merged event")
		if e.dlq != nil {
			_ = e.dlq.PublishEvent(ctx, "patient-merged", "merge-service", data)
		}
	}
}
