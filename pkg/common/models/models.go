package models

import (
	"time"

	"github.com/google/uuid"
)

// Assessment types accepted on submission.
type AssessmentType string

const (
	AssessmentTypeSymptomCheck   AssessmentType = "symptom_check"
	AssessmentTypeWellnessCheck  AssessmentType = "wellness_check"
	AssessmentTypeRiskAssessment AssessmentType = "risk_assessment"
)

func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentTypeSymptomCheck, AssessmentTypeWellnessCheck, AssessmentTypeRiskAssessment:
		return true
	}
	return false
}

// UrgencyLevel is the ordinal classification of how quickly the patient
// should seek care.
type UrgencyLevel string

const (
	UrgencyLow       UrgencyLevel = "low"
	UrgencyMedium    UrgencyLevel = "medium"
	UrgencyHigh      UrgencyLevel = "high"
	UrgencyEmergency UrgencyLevel = "emergency"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

type AssessmentStatus string

const (
	StatusInProgress AssessmentStatus = "in_progress"
	StatusCompleted  AssessmentStatus = "completed"
	StatusReviewed   AssessmentStatus = "reviewed"
)

// PatientContext is the enrichment attached to a request when the owning
// patient is known. Every field is optional; the engine renders absent
// values as "not specified"/"none reported".
type PatientContext struct {
	Age                *int     `json:"age,omitempty"`
	Gender             string   `json:"gender,omitempty"`
	MedicalHistory     []string `json:"medicalHistory,omitempty"`
	CurrentMedications []string `json:"currentMedications,omitempty"`
	Allergies          []string `json:"allergies,omitempty"`
}

// AssessmentRequest is the transient submission shape. Severity and duration
// are keyed by symptom label; missing entries mean "unspecified", never an
// error.
type AssessmentRequest struct {
	PatientID      string                 `json:"patientId"`
	AssessmentType AssessmentType         `json:"assessmentType,omitempty"`
	Symptoms       []string               `json:"symptoms"`
	Severity       map[string]int         `json:"severity,omitempty"`
	Duration       map[string]string      `json:"duration,omitempty"`
	Responses      map[string]interface{} `json:"responses,omitempty"`
	AdditionalInfo string                 `json:"additionalInfo,omitempty"`
	PatientContext *PatientContext        `json:"-"`
}

// AIHealthAnalysis is the verdict produced by the symptom analysis engine.
// Instances handed to callers always satisfy the field invariants: non-empty
// diagnosis/recommendations, a valid urgency level, and a risk score in
// [0,100].
type AIHealthAnalysis struct {
	Diagnosis        []string     `json:"diagnosis"`
	Recommendations  []string     `json:"recommendations"`
	UrgencyLevel     UrgencyLevel `json:"urgencyLevel"`
	ReferralNeeded   bool         `json:"referralNeeded"`
	RiskScore        int          `json:"riskScore"`
	FollowUpDays     *int         `json:"followUpDays,omitempty"`
	EmergencyWarning string       `json:"emergencyWarning,omitempty"`
}

// HealthAssessment is the persisted record of one submitted assessment.
// Created once with status completed; the review columns are written by a
// separate provider-review workflow.
type HealthAssessment struct {
	ID                      uuid.UUID              `json:"id"`
	PatientID               string                 `json:"patientId"`
	AssessmentType          AssessmentType         `json:"assessmentType"`
	Symptoms                []string               `json:"symptoms"`
	Responses               map[string]interface{} `json:"responses,omitempty"`
	AIAnalysis              AIHealthAnalysis       `json:"aiAnalysis"`
	FollowUpRequired        bool                   `json:"followUpRequired"`
	FollowUpScheduled       bool                   `json:"followUpScheduled"`
	ConsultationRecommended bool                   `json:"consultationRecommended"`
	Status                  AssessmentStatus       `json:"status"`
	ReviewedBy              *string                `json:"reviewedBy,omitempty"`
	ReviewNotes             *string                `json:"reviewNotes,omitempty"`
	ReviewedAt              *time.Time             `json:"reviewedAt,omitempty"`
	CreatedAt               time.Time              `json:"createdAt"`
}

// Patient is the directory view consumed by assessment enrichment.
type Patient struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Email       string     `json:"email,omitempty"`
}

// Event is the envelope published to the event bus after lifecycle
// transitions, consumed by downstream collaborators such as consultation
// booking.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
