package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carelink/assessment/pkg/common/logger"
	"github.com/carelink/assessment/pkg/common/models"
	"github.com/carelink/assessment/pkg/observability/metrics"
	"github.com/carelink/assessment/pkg/patients"
	"github.com/google/uuid"
)

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrAccessDenied       = errors.New("access denied")
)

const defaultHistoryLimit = 10

// Store persists assessment records.
type Store interface {
	CreateAssessment(ctx context.Context, record *models.HealthAssessment) error
	GetAssessment(ctx context.Context, id uuid.UUID) (models.HealthAssessment, error)
	ListAssessmentsByPatient(ctx context.Context, patientID string, limit, offset int) ([]models.HealthAssessment, error)
}

// Directory resolves patient records for context enrichment.
type Directory interface {
	FindPatient(ctx context.Context, id string) (models.Patient, error)
}

// Analyzer produces a validated verdict for a request; it never fails.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AssessmentRequest) models.AIHealthAnalysis
}

// Publisher emits lifecycle events for downstream collaborators.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error
}

// Service orchestrates validate → enrich → analyze → persist → publish, and
// serves assessment reads.
type Service struct {
	store     Store
	directory Directory
	engine    Analyzer
	publisher Publisher
	now       func() time.Time
}

func NewService(store Store, directory Directory, engine Analyzer, publisher Publisher) *Service {
	return &Service{
		store:     store,
		directory: directory,
		engine:    engine,
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit runs one assessment end to end and returns the persisted record.
// An unknown patient is not an error: analysis proceeds with empty context
// so unregistered/demo patients can still be assessed.
func (s *Service) Submit(ctx context.Context, req models.AssessmentRequest) (models.HealthAssessment, error) {
	if verr := ValidateRequest(&req); verr != nil {
		metrics.IncValidationRejected()
		return models.HealthAssessment{}, verr
	}

	req.PatientContext = s.enrich(ctx, req.PatientID)

	analysis := s.engine.Analyze(ctx, req)

	record := models.HealthAssessment{
		ID:                      uuid.New(),
		PatientID:               req.PatientID,
		AssessmentType:          req.AssessmentType,
		Symptoms:                req.Symptoms,
		Responses:               req.Responses,
		AIAnalysis:              analysis,
		FollowUpRequired:        analysis.FollowUpDays != nil && *analysis.FollowUpDays <= 3,
		ConsultationRecommended: analysis.ReferralNeeded,
		Status:                  models.StatusCompleted,
		CreatedAt:               s.now().UTC(),
	}

	if err := s.store.CreateAssessment(ctx, &record); err != nil {
		// The verdict is lost with the write; the caller must resubmit.
		return models.HealthAssessment{}, fmt.Errorf("failed to persist assessment: %w", err)
	}

	metrics.IncAssessmentsCompleted()
	if analysis.UrgencyLevel == models.UrgencyHigh || analysis.UrgencyLevel == models.UrgencyEmergency {
		metrics.IncUrgentVerdicts()
	}

	s.publishCompleted(ctx, record)

	return record, nil
}

func (s *Service) enrich(ctx context.Context, patientID string) *models.PatientContext {
	patient, err := s.directory.FindPatient(ctx, patientID)
	if err != nil {
		if !errors.Is(err, patients.ErrPatientNotFound) {
			logger.Log.WithError(err).WithField("patient_id", patientID).
				Warn("patient lookup failed, analyzing without context")
		}
		return nil
	}

	pc := &models.PatientContext{Gender: patient.Gender}
	if patient.DateOfBirth != nil {
		age := yearsBetween(*patient.DateOfBirth, s.now())
		pc.Age = &age
	}
	// History, medications and allergies live in records outside this
	// service; they stay empty and render as "None reported".
	return pc
}

func yearsBetween(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.YearDay() < birth.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func (s *Service) publishCompleted(ctx context.Context, record models.HealthAssessment) {
	if s.publisher == nil {
		return
	}
	data := map[string]interface{}{
		"assessment_id":            record.ID.String(),
		"patient_id":               record.PatientID,
		"assessment_type":          string(record.AssessmentType),
		"urgency_level":            string(record.AIAnalysis.UrgencyLevel),
		"risk_score":               record.AIAnalysis.RiskScore,
		"consultation_recommended": record.ConsultationRecommended,
		"follow_up_required":       record.FollowUpRequired,
	}
	// Best effort: the record is already persisted, a lost event must not
	// fail the request.
	if err := s.publisher.PublishEvent(ctx, "assessment.completed", "assessment-service", data); err != nil {
		logger.Log.WithError(err).WithField("assessment_id", record.ID).
			Error("failed to publish assessment event")
	}
}

// History returns a patient's assessments, most recent first.
func (s *Service) History(ctx context.Context, patientID string, limit, offset int) ([]models.HealthAssessment, error) {
	if verr := ValidatePagination(limit, offset); verr != nil {
		return nil, verr
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	return s.store.ListAssessmentsByPatient(ctx, patientID, limit, offset)
}

// GetByID loads one assessment, verifying that its owning patient matches
// the caller's authorized scope. An ownership mismatch is reported as
// ErrAccessDenied, distinct from ErrAssessmentNotFound.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, scopePatientID string) (models.HealthAssessment, error) {
	record, err := s.store.GetAssessment(ctx, id)
	if err != nil {
		return models.HealthAssessment{}, err
	}
	if record.PatientID != scopePatientID {
		return models.HealthAssessment{}, ErrAccessDenied
	}
	return record, nil
}
