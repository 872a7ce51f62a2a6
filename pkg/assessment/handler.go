package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/carelink/assessment/pkg/catalog"
	"github.com/carelink/assessment/pkg/common/logger"
	"github.com/carelink/assessment/pkg/common/models"
	"github.com/carelink/assessment/pkg/gateway/auth"
	"github.com/carelink/assessment/pkg/gateway/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const emergencyWarningText = "If you are experiencing any of these symptoms, seek emergency care immediately."

type Handler struct {
	service      *Service
	catalog      catalog.Catalog
	sessions     *auth.SessionManager
	demoSessions bool
}

// NewHandler builds the HTTP surface. demoSessions controls whether
// /auth/session mints scope tokens for arbitrary patient ids; it must be
// false in production, where sessions come from the platform's real
// identity provider.
func NewHandler(service *Service, cat catalog.Catalog, sessions *auth.SessionManager, demoSessions bool) *Handler {
	return &Handler{service: service, catalog: cat, sessions: sessions, demoSessions: demoSessions}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/auth/session", h.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/questionnaires", h.handleQuestionnaires).Methods(http.MethodGet)
	r.HandleFunc("/emergency-symptoms", h.handleEmergencySymptoms).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.RequireScope(h.sessions))
	protected.HandleFunc("/assessment", h.handleSubmit).Methods(http.MethodPost)
	protected.HandleFunc("/assessments/{patientId}", h.handleHistory).Methods(http.MethodGet)
	protected.HandleFunc("/assessment/{id}", h.handleGet).Methods(http.MethodGet)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if !h.demoSessions {
		writeError(w, http.StatusForbidden, "demo sessions are disabled")
		return
	}

	var req struct {
		PatientID string `json:"patientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	token, expiresAt, err := h.sessions.IssueToken(req.PatientID)
	if err != nil {
		logger.Log.WithError(err).Error("failed to issue session token")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token":     token,
		"expiresAt": expiresAt,
	})
}

func (h *Handler) handleQuestionnaires(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questionnaires": h.catalog.Questionnaires,
	})
}

func (h *Handler) handleEmergencySymptoms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"emergencySymptoms": h.catalog.EmergencySymptoms,
		"warning":           emergencyWarningText,
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req models.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.PatientID != "" && req.PatientID != middleware.PatientScope(r.Context()) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	record, err := h.service.Submit(r.Context(), req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "validation failed",
				"details": verr.Fields,
			})
			return
		}
		logger.Log.WithError(err).Error("failed to submit assessment")
		writeError(w, http.StatusInternalServerError, "failed to submit assessment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"assessment": record})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patientId"]
	if patientID != middleware.PatientScope(r.Context()) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	limit, ok := parseQueryInt(r, "limit", 10)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, ok := parseQueryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	records, err := h.service.History(r.Context(), patientID, limit, offset)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "validation failed",
				"details": verr.Fields,
			})
			return
		}
		logger.Log.WithError(err).Error("failed to list assessments")
		writeError(w, http.StatusInternalServerError, "failed to list assessments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": records,
		"count":       len(records),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	record, err := h.service.GetByID(r.Context(), id, middleware.PatientScope(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, ErrAccessDenied):
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, ErrAssessmentNotFound):
			writeError(w, http.StatusNotFound, "assessment not found")
		default:
			logger.Log.WithError(err).Error("failed to get assessment")
			writeError(w, http.StatusInternalServerError, "failed to get assessment")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"assessment": record})
}

func parseQueryInt(r *http.Request, name string, defaultValue int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
