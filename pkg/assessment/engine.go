package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelink/assessment/pkg/catalog"
	"github.com/carelink/assessment/pkg/common/logger"
	"github.com/carelink/assessment/pkg/common/models"
	"github.com/carelink/assessment/pkg/observability/metrics"
)

// Backend classifies a rendered assessment prompt into a verdict. An error
// return means the backend could not produce one (unreachable, timed out,
// unparseable response); the engine recovers with the fallback heuristic.
type Backend interface {
	Classify(ctx context.Context, prompt string) (models.AIHealthAnalysis, error)
}

// Engine is the single decision point converting an assessment request into
// a validated verdict. A nil backend means demo mode: the deterministic
// heuristic handles every request.
type Engine struct {
	backend Backend
	catalog catalog.Catalog
}

func NewEngine(backend Backend, cat catalog.Catalog) *Engine {
	return &Engine{backend: backend, catalog: cat}
}

// Analyze never fails: any backend trouble is absorbed by the fallback
// heuristic, and both paths pass through Sanitize before returning.
func (e *Engine) Analyze(ctx context.Context, req models.AssessmentRequest) models.AIHealthAnalysis {
	if e.backend == nil {
		logger.Log.WithField("symptoms", strings.Join(req.Symptoms, ", ")).
			Debug("no classification backend configured, using heuristic")
		return Sanitize(e.fallback(req))
	}

	verdict, err := e.backend.Classify(ctx, BuildPrompt(req))
	if err != nil {
		metrics.IncFallbackActivated()
		logger.Log.WithError(err).Warn("classification backend failed, using heuristic")
		return Sanitize(e.fallback(req))
	}

	return Sanitize(verdict)
}

// Fallback heuristic markers, checked in priority order. The high-urgency
// scan short-circuits: a request carrying both an emergency keyword and a
// common-cold keyword classifies high.
var (
	severeMarkers = []string{"chest pain", "difficulty breathing", "severe"}
	commonMarkers = []string{"headache", "fatigue", "cough"}
)

func (e *Engine) fallback(req models.AssessmentRequest) models.AIHealthAnalysis {
	if e.hasSevereSymptoms(req.Symptoms) {
		days := 1
		return models.AIHealthAnalysis{
			Diagnosis: []string{
				"Requires immediate medical evaluation",
				"Possible cardiac or respiratory concern",
			},
			Recommendations: []string{
				"Seek immediate medical attention",
				"Do not delay in consulting a healthcare provider",
				"Monitor symptoms closely",
			},
			UrgencyLevel:     models.UrgencyHigh,
			ReferralNeeded:   true,
			RiskScore:        75,
			FollowUpDays:     &days,
			EmergencyWarning: "These symptoms may require immediate medical attention",
		}
	}

	if matchesAny(req.Symptoms, commonMarkers) {
		days := 7
		return models.AIHealthAnalysis{
			Diagnosis: []string{
				"Possible viral infection",
				"Common cold or flu",
				"Stress-related symptoms",
			},
			Recommendations: []string{
				"Get adequate rest and hydration",
				"Monitor symptoms for changes",
				"Consider over-the-counter symptom relief",
				"Consult healthcare provider if symptoms worsen",
			},
			UrgencyLevel:   models.UrgencyLow,
			ReferralNeeded: false,
			RiskScore:      25,
			FollowUpDays:   &days,
		}
	}

	days := 3
	return models.AIHealthAnalysis{
		Diagnosis: []string{
			"General health concern",
			"Requires further evaluation",
		},
		Recommendations: []string{
			"Schedule consultation with healthcare provider",
			"Keep a symptom diary",
			"Monitor for any changes or new symptoms",
			"Maintain healthy lifestyle habits",
		},
		UrgencyLevel:   models.UrgencyMedium,
		ReferralNeeded: true,
		RiskScore:      40,
		FollowUpDays:   &days,
	}
}

func (e *Engine) hasSevereSymptoms(symptoms []string) bool {
	if matchesAny(symptoms, severeMarkers) {
		return true
	}
	// Any hit on the canonical emergency list escalates too.
	for _, s := range symptoms {
		if e.catalog.IsEmergency(s) {
			return true
		}
	}
	return false
}

func matchesAny(symptoms []string, markers []string) bool {
	for _, s := range symptoms {
		lowered := strings.ToLower(s)
		for _, m := range markers {
			if strings.Contains(lowered, m) {
				return true
			}
		}
	}
	return false
}

// Sanitize coerces a verdict from a partially-trusted source into the
// published invariants. Out-of-band values get safe defaults rather than
// rejections, erring toward caution. Idempotent: sanitizing an already-valid
// verdict returns it unchanged.
func Sanitize(a models.AIHealthAnalysis) models.AIHealthAnalysis {
	if len(a.Diagnosis) == 0 {
		a.Diagnosis = []string{"Requires medical evaluation"}
	}
	if len(a.Recommendations) == 0 {
		a.Recommendations = []string{"Consult healthcare provider"}
	}
	if !a.UrgencyLevel.Valid() {
		a.UrgencyLevel = models.UrgencyMedium
	}
	if a.RiskScore < 0 || a.RiskScore > 100 {
		a.RiskScore = 50
	}
	if a.FollowUpDays != nil && *a.FollowUpDays <= 0 {
		a.FollowUpDays = nil
	}
	return a
}

// BuildPrompt renders the request into the user message sent to the
// classification backend. Absent context fields render as explicit
// "Not specified"/"None reported" lines.
func BuildPrompt(req models.AssessmentRequest) string {
	var b strings.Builder
	b.WriteString("Health Assessment Request:\n\nSymptoms reported:\n")
	for _, symptom := range req.Symptoms {
		b.WriteString("- ")
		b.WriteString(symptom)
		if sev, ok := req.Severity[symptom]; ok {
			fmt.Fprintf(&b, " (severity: %d/10)", sev)
		}
		if dur, ok := req.Duration[symptom]; ok && dur != "" {
			fmt.Fprintf(&b, " (duration: %s)", dur)
		}
		b.WriteString("\n")
	}

	info := req.AdditionalInfo
	if info == "" {
		info = "None provided"
	}
	fmt.Fprintf(&b, "\nAdditional information: %s\n", info)

	if pc := req.PatientContext; pc != nil {
		b.WriteString("\nPatient context:\n")
		fmt.Fprintf(&b, "- Age: %s\n", orNotSpecified(formatAge(pc.Age)))
		fmt.Fprintf(&b, "- Gender: %s\n", orNotSpecified(pc.Gender))
		fmt.Fprintf(&b, "- Medical history: %s\n", orNoneReported(pc.MedicalHistory))
		fmt.Fprintf(&b, "- Current medications: %s\n", orNoneReported(pc.CurrentMedications))
		fmt.Fprintf(&b, "- Known allergies: %s\n", orNoneReported(pc.Allergies))
	}

	b.WriteString("\nPlease provide a comprehensive health assessment including possible explanations for these symptoms, urgency level, and recommendations. Remember this is for preliminary assessment only and not a substitute for professional medical care.")
	return b.String()
}

func formatAge(age *int) string {
	if age == nil {
		return ""
	}
	return fmt.Sprintf("%d", *age)
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func orNoneReported(items []string) string {
	if len(items) == 0 {
		return "None reported"
	}
	return strings.Join(items, ", ")
}
