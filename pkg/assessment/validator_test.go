package assessment

import (
	"testing"

	"github.com/carelink/assessment/pkg/common/models"
)

func TestValidateAcceptsMinimalRequest(t *testing.T) {
	req := models.AssessmentRequest{
		PatientID: "p1",
		Symptoms:  []string{"Headache"},
	}
	if verr := ValidateRequest(&req); verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if req.AssessmentType != models.AssessmentTypeSymptomCheck {
		t.Fatalf("expected default assessment type, got %s", req.AssessmentType)
	}
}

func TestValidateRejectsEmptySymptoms(t *testing.T) {
	req := models.AssessmentRequest{PatientID: "p1", Symptoms: []string{}}
	verr := ValidateRequest(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Kind != KindEmptyRequiredList {
		t.Fatalf("unexpected fields: %+v", verr.Fields)
	}
}

func TestValidateRejectsMissingPatient(t *testing.T) {
	req := models.AssessmentRequest{PatientID: "  ", Symptoms: []string{"Cough"}}
	verr := ValidateRequest(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if verr.Fields[0].Field != "patientId" || verr.Fields[0].Kind != KindMissingField {
		t.Fatalf("unexpected fields: %+v", verr.Fields)
	}
}

func TestValidateRejectsSeverityOutOfRange(t *testing.T) {
	req := models.AssessmentRequest{
		PatientID: "p1",
		Symptoms:  []string{"Cough", "Fever"},
		Severity:  map[string]int{"Cough": 0, "Fever": 11},
	}
	verr := ValidateRequest(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected both severity violations reported, got %+v", verr.Fields)
	}
	for _, f := range verr.Fields {
		if f.Kind != KindOutOfRange {
			t.Fatalf("unexpected kind %s", f.Kind)
		}
	}
}

func TestValidateRejectsUnknownAssessmentType(t *testing.T) {
	req := models.AssessmentRequest{
		PatientID:      "p1",
		AssessmentType: "horoscope",
		Symptoms:       []string{"Cough"},
	}
	verr := ValidateRequest(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if verr.Fields[0].Kind != KindInvalidValue {
		t.Fatalf("unexpected kind %s", verr.Fields[0].Kind)
	}
}

func TestValidateEnumeratesAllFailures(t *testing.T) {
	req := models.AssessmentRequest{
		Severity: map[string]int{"Cough": 15},
	}
	verr := ValidateRequest(&req)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %+v", len(verr.Fields), verr.Fields)
	}
}

func TestValidateAllowsSeverityForUnlistedSymptom(t *testing.T) {
	// Partial context is "unspecified", not an error: a severity entry whose
	// key is not in symptoms still only has to respect the range.
	req := models.AssessmentRequest{
		PatientID: "p1",
		Symptoms:  []string{"Cough"},
		Severity:  map[string]int{"Fever": 4},
	}
	if verr := ValidateRequest(&req); verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
}

func TestValidatePaginationRejectsNegatives(t *testing.T) {
	if verr := ValidatePagination(10, 0); verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}
	verr := ValidatePagination(-1, -5)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected both parameters reported, got %+v", verr.Fields)
	}
}
