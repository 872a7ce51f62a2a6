package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	assessmentsCompleted atomic.Int64
	validationRejected   atomic.Int64
	fallbackActivated    atomic.Int64
	urgentVerdicts       atomic.Int64
)

func IncAssessmentsCompleted() { assessmentsCompleted.Add(1) }
func IncValidationRejected()   { validationRejected.Add(1) }

// IncFallbackActivated counts degraded-mode classifications: the backend was
// configured but its verdict could not be used.
func IncFallbackActivated() { fallbackActivated.Add(1) }
func IncUrgentVerdicts()    { urgentVerdicts.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# HELP carelink_assessments_completed_total Assessments persisted with a verdict.\n")
	fmt.Fprintf(w, "# TYPE carelink_assessments_completed_total counter\n")
	fmt.Fprintf(w, "carelink_assessments_completed_total %d\n", assessmentsCompleted.Load())

	fmt.Fprintf(w, "# HELP carelink_assessments_validation_rejected_total Submissions rejected by the request validator.\n")
	fmt.Fprintf(w, "# TYPE carelink_assessments_validation_rejected_total counter\n")
	fmt.Fprintf(w, "carelink_assessments_validation_rejected_total %d\n", validationRejected.Load())

	fmt.Fprintf(w, "# HELP carelink_assessments_fallback_activated_total Classifications served by the heuristic after a backend failure.\n")
	fmt.Fprintf(w, "# TYPE carelink_assessments_fallback_activated_total counter\n")
	fmt.Fprintf(w, "carelink_assessments_fallback_activated_total %d\n", fallbackActivated.Load())

	fmt.Fprintf(w, "# HELP carelink_assessments_urgent_verdicts_total Verdicts classified high or emergency urgency.\n")
	fmt.Fprintf(w, "# TYPE carelink_assessments_urgent_verdicts_total counter\n")
	fmt.Fprintf(w, "carelink_assessments_urgent_verdicts_total %d\n", urgentVerdicts.Load())
}

func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WritePrometheus(w)
	}
}
