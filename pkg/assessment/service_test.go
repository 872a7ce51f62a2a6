package assessment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/carelink/assessment/pkg/common/models"
	"github.com/carelink/assessment/pkg/patients"
	"github.com/google/uuid"
)

type memStore struct {
	records    []models.HealthAssessment
	failCreate bool
}

func (s *memStore) CreateAssessment(ctx context.Context, record *models.HealthAssessment) error {
	if s.failCreate {
		return errors.New("write failed")
	}
	s.records = append(s.records, *record)
	return nil
}

func (s *memStore) GetAssessment(ctx context.Context, id uuid.UUID) (models.HealthAssessment, error) {
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return models.HealthAssessment{}, ErrAssessmentNotFound
}

func (s *memStore) ListAssessmentsByPatient(ctx context.Context, patientID string, limit, offset int) ([]models.HealthAssessment, error) {
	var matched []models.HealthAssessment
	for _, r := range s.records {
		if r.PatientID == patientID {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

type fakeDirectory struct {
	patient models.Patient
	err     error
}

func (d *fakeDirectory) FindPatient(ctx context.Context, id string) (models.Patient, error) {
	if d.err != nil {
		return models.Patient{}, d.err
	}
	return d.patient, nil
}

type fakeAnalyzer struct {
	verdict models.AIHealthAnalysis
	calls   int
	lastReq models.AssessmentRequest
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, req models.AssessmentRequest) models.AIHealthAnalysis {
	a.calls++
	a.lastReq = req
	return Sanitize(a.verdict)
}

type fakePublisher struct {
	events []string
	err    error
}

func (p *fakePublisher) PublishEvent(ctx context.Context, eventType, source string, data map[string]interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, eventType)
	return nil
}

func validRequest() models.AssessmentRequest {
	return models.AssessmentRequest{
		PatientID: "patient-a",
		Symptoms:  []string{"Headache"},
	}
}

func newTestService(store Store, directory Directory, analyzer Analyzer, publisher Publisher) *Service {
	if directory == nil {
		directory = &fakeDirectory{err: patients.ErrPatientNotFound}
	}
	return NewService(store, directory, analyzer, publisher)
}

func TestSubmitDerivesFlagsFromVerdict(t *testing.T) {
	cases := []struct {
		name             string
		followUpDays     *int
		referral         bool
		wantFollowUp     bool
		wantConsultation bool
	}{
		{"urgent verdict", intPtr(1), true, true, true},
		{"relaxed verdict", intPtr(7), false, false, false},
		{"boundary three days", intPtr(3), false, true, false},
		{"no follow-up", nil, true, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{}
			analyzer := &fakeAnalyzer{verdict: models.AIHealthAnalysis{
				Diagnosis:       []string{"d"},
				Recommendations: []string{"r"},
				UrgencyLevel:    models.UrgencyMedium,
				ReferralNeeded:  tc.referral,
				RiskScore:       40,
				FollowUpDays:    tc.followUpDays,
			}}
			svc := newTestService(store, nil, analyzer, nil)

			record, err := svc.Submit(context.Background(), validRequest())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if record.FollowUpRequired != tc.wantFollowUp {
				t.Fatalf("followUpRequired = %v, want %v", record.FollowUpRequired, tc.wantFollowUp)
			}
			if record.ConsultationRecommended != tc.wantConsultation {
				t.Fatalf("consultationRecommended = %v, want %v", record.ConsultationRecommended, tc.wantConsultation)
			}
			if record.Status != models.StatusCompleted {
				t.Fatalf("status = %s, want completed", record.Status)
			}
		})
	}
}

func TestSubmitRejectsInvalidBeforeEngine(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	svc := newTestService(&memStore{}, nil, analyzer, nil)

	_, err := svc.Submit(context.Background(), models.AssessmentRequest{
		PatientID: "patient-a",
		Symptoms:  nil,
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatalf("engine must not be invoked for invalid input, got %d calls", analyzer.calls)
	}
}

func TestSubmitEnrichesPatientContext(t *testing.T) {
	dob := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	directory := &fakeDirectory{patient: models.Patient{
		ID:          "patient-a",
		DateOfBirth: &dob,
		Gender:      "male",
	}}
	analyzer := &fakeAnalyzer{verdict: models.AIHealthAnalysis{
		Diagnosis: []string{"d"}, Recommendations: []string{"r"},
		UrgencyLevel: models.UrgencyLow, RiskScore: 20,
	}}
	svc := newTestService(&memStore{}, directory, analyzer, nil)
	svc.now = func() time.Time { return time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC) }

	if _, err := svc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pc := analyzer.lastReq.PatientContext
	if pc == nil {
		t.Fatal("expected patient context on enriched request")
	}
	if pc.Age == nil || *pc.Age != 35 {
		t.Fatalf("expected age 35, got %v", pc.Age)
	}
	if pc.Gender != "male" {
		t.Fatalf("expected gender male, got %q", pc.Gender)
	}
}

func TestSubmitProceedsWhenPatientUnknown(t *testing.T) {
	analyzer := &fakeAnalyzer{verdict: models.AIHealthAnalysis{
		Diagnosis: []string{"d"}, Recommendations: []string{"r"},
		UrgencyLevel: models.UrgencyLow, RiskScore: 20,
	}}
	svc := newTestService(&memStore{}, &fakeDirectory{err: patients.ErrPatientNotFound}, analyzer, nil)

	record, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analyzer.lastReq.PatientContext != nil {
		t.Fatal("expected empty patient context for unknown patient")
	}
	if record.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
}

func TestSubmitPersistenceFailurePropagates(t *testing.T) {
	store := &memStore{failCreate: true}
	publisher := &fakePublisher{}
	analyzer := &fakeAnalyzer{verdict: models.AIHealthAnalysis{
		Diagnosis: []string{"d"}, Recommendations: []string{"r"},
		UrgencyLevel: models.UrgencyLow, RiskScore: 20,
	}}
	svc := newTestService(store, nil, analyzer, publisher)

	_, err := svc.Submit(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error when persistence fails")
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Fatal("persistence failure must not be a validation error")
	}
	if len(publisher.events) != 0 {
		t.Fatal("no event should be published when nothing was persisted")
	}
}

func TestSubmitPublishFailureDoesNotFailRequest(t *testing.T) {
	analyzer := &fakeAnalyzer{verdict: models.AIHealthAnalysis{
		Diagnosis: []string{"d"}, Recommendations: []string{"r"},
		UrgencyLevel: models.UrgencyLow, RiskScore: 20,
	}}
	svc := newTestService(&memStore{}, nil, analyzer, &fakePublisher{err: errors.New("broker down")})

	if _, err := svc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
}

func TestSubmitPublishesCompletedEvent(t *testing.T) {
	publisher := &fakePublisher{}
	analyzer := &fakeAnalyzer{verdict: models.AIHealthAnalysis{
		Diagnosis: []string{"d"}, Recommendations: []string{"r"},
		UrgencyLevel: models.UrgencyHigh, ReferralNeeded: true, RiskScore: 75,
	}}
	svc := newTestService(&memStore{}, nil, analyzer, publisher)

	if _, err := svc.Submit(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.events) != 1 || publisher.events[0] != "assessment.completed" {
		t.Fatalf("unexpected events: %v", publisher.events)
	}
}

func TestHistoryReturnsMostRecentFirst(t *testing.T) {
	store := &memStore{}
	analyzer := &fakeAnalyzer{verdict: models.AIHealthAnalysis{
		Diagnosis: []string{"d"}, Recommendations: []string{"r"},
		UrgencyLevel: models.UrgencyLow, RiskScore: 20,
	}}
	svc := newTestService(store, nil, analyzer, nil)

	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		offset := time.Duration(i) * time.Hour
		svc.now = func() time.Time { return base.Add(offset) }
		if _, err := svc.Submit(context.Background(), validRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	records, err := svc.History(context.Background(), "patient-a", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Fatal("expected most-recent-first ordering")
		}
	}
}

func TestHistoryRejectsNegativePagination(t *testing.T) {
	svc := newTestService(&memStore{}, nil, &fakeAnalyzer{}, nil)

	_, err := svc.History(context.Background(), "patient-a", -1, 0)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByIDEnforcesOwnership(t *testing.T) {
	store := &memStore{}
	analyzer := &fakeAnalyzer{verdict: models.AIHealthAnalysis{
		Diagnosis: []string{"d"}, Recommendations: []string{"r"},
		UrgencyLevel: models.UrgencyLow, RiskScore: 20,
	}}
	svc := newTestService(store, nil, analyzer, nil)

	record, err := svc.Submit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), record.ID, "patient-a"); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}

	_, err = svc.GetByID(context.Background(), record.ID, "patient-b")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}

	_, err = svc.GetByID(context.Background(), uuid.New(), "patient-a")
	if !errors.Is(err, ErrAssessmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func intPtr(v int) *int { return &v }
