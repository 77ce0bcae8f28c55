package provenance

import (
	"context"
	"time"

	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/models"
)

type Service struct {
	repo        *Repository
	defaultSize int
	maxSize     int
}

func NewService(repo *Repository, defaultSize, maxSize int) *Service {
	if defaultSize <= 0 {
		defaultSize = 50
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	return &Service{repo: repo, defaultSize: defaultSize, maxSize: maxSize}
}

// FindUpdatedSince surfaces patients whose merge is stale relative to
// standardized records created in [start, end), grouped by patient code.
// The total count and the detail page come from separate queries so the
// page count does not shift while a client walks the pages.
func (s *Service) FindUpdatedSince(ctx context.Context, start, end time.Time, page, size int) (*models.Paginated, error) {
	if start.IsZero() {
		return nil, faults.Validationf("start", "start of the window is required")
	}
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if !end.After(start) {
		return nil, faults.Validationf("end", "window end must be after start")
	}
	if page < 1 {
		page = 1
	}
	size = s.clampSize(size)

	total, err := s.repo.CountStalePatients(ctx, start, end)
	if err != nil {
		return nil, err
	}

	result := &models.Paginated{
		Items:       []PatientGroup{},
		CurrentPage: page,
		PageCount:   pageCount(total, size),
	}
	if total == 0 {
		return result, nil
	}

	codes, err := s.repo.StalePatientCodes(ctx, start, end, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.StaleRecordsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	result.Items = groupByPatient(codes, records)
	return result, nil
}

func (s *Service) clampSize(size int) int {
	if size <= 0 {
		return s.defaultSize
	}
	if size > s.maxSize {
		return s.maxSize
	}
	return size
}

func pageCount(total int64, size int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// groupByPatient preserves the page order of codes; records arrive sorted
// by patient code and event moment.
func groupByPatient(codes []string, records []StaleRecord) []PatientGroup {
	byCode := make(map[string][]StaleRecord, len(codes))
	for _, record := range records {
		byCode[record.PatientCode] = append(byCode[record.PatientCode], record)
	}
	groups := make([]PatientGroup, 0, len(codes))
	for _, code := range codes {
		groups = append(groups, PatientGroup{PatientCode: code, Records: byCode[code]})
	}
	return groups
}
