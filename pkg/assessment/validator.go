package assessment

import (
	"fmt"
	"strings"

	"github.com/carelink/assessment/pkg/common/models"
)

// Field-error kinds surfaced to callers.
const (
	KindMissingField      = "missing_field"
	KindEmptyRequiredList = "empty_required_list"
	KindOutOfRange        = "out_of_range"
	KindInvalidValue      = "invalid_value"
)

type FieldError struct {
	Field   string `json:"field"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ValidationError enumerates every field that failed, so the caller can
// report all problems at once.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid assessment request: " + strings.Join(parts, "; ")
}

// ValidateRequest is the single boundary-checking gate for submissions.
// Unknown fields were already discarded during decoding; anything that
// passes here is trusted by the engine and storage without re-validation.
// A nil return means the request is valid. The default assessment type is
// applied in place.
func ValidateRequest(req *models.AssessmentRequest) *ValidationError {
	var fields []FieldError

	if strings.TrimSpace(req.PatientID) == "" {
		fields = append(fields, FieldError{
			Field:   "patientId",
			Kind:    KindMissingField,
			Message: "patientId is required",
		})
	}

	if len(req.Symptoms) == 0 {
		fields = append(fields, FieldError{
			Field:   "symptoms",
			Kind:    KindEmptyRequiredList,
			Message: "at least one symptom is required",
		})
	}

	if req.AssessmentType == "" {
		req.AssessmentType = models.AssessmentTypeSymptomCheck
	} else if !req.AssessmentType.Valid() {
		fields = append(fields, FieldError{
			Field:   "assessmentType",
			Kind:    KindInvalidValue,
			Message: fmt.Sprintf("unknown assessment type %q", req.AssessmentType),
		})
	}

	for symptom, severity := range req.Severity {
		if severity < 1 || severity > 10 {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("severity.%s", symptom),
				Kind:    KindOutOfRange,
				Message: fmt.Sprintf("severity must be between 1 and 10, got %d", severity),
			})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ValidatePagination checks history paging parameters. Negative values are
// rejected rather than clamped.
func ValidatePagination(limit, offset int) *ValidationError {
	var fields []FieldError
	if limit < 0 {
		fields = append(fields, FieldError{
			Field:   "limit",
			Kind:    KindOutOfRange,
			Message: "limit must be non-negative",
		})
	}
	if offset < 0 {
		fields = append(fields, FieldError{
			Field:   "offset",
			Kind:    KindOutOfRange,
			Message: "offset must be non-negative",
		})
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
