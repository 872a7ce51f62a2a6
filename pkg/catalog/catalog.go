// Package catalog holds the static assessment question sets and the
// canonical emergency-symptom list. The emergency list is the single source
// consulted by both the HTTP surface and the engine's fallback heuristic, so
// client- and server-side warnings cannot drift apart.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionScale          QuestionType = "scale"
	QuestionText           QuestionType = "text"
	QuestionBoolean        QuestionType = "boolean"
)

type Question struct {
	ID       string       `yaml:"id" json:"id"`
	Type     QuestionType `yaml:"type" json:"type"`
	Question string       `yaml:"question" json:"question"`
	Options  []string     `yaml:"options,omitempty" json:"options,omitempty"`
	Required bool         `yaml:"required" json:"required"`
}

type Questionnaire struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

type Catalog struct {
	Questionnaires    []Questionnaire `yaml:"questionnaires" json:"questionnaires"`
	EmergencySymptoms []string        `yaml:"emergency_symptoms" json:"emergencySymptoms"`
}

// Load reads a catalog override from the given YAML file, or returns the
// built-in default when path is empty. Every error path also returns the
// built-in default, so a broken override file can never leave the service
// without emergency symptoms or questionnaires.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Default(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Default(), err
	}
	if len(cat.EmergencySymptoms) == 0 {
		return Default(), fmt.Errorf("catalog defines no emergency symptoms")
	}
	return cat, nil
}

// IsEmergency reports whether a reported symptom label contains any of the
// canonical emergency phrases, case-insensitively.
func (c Catalog) IsEmergency(symptom string) bool {
	lowered := strings.ToLower(symptom)
	for _, phrase := range c.EmergencySymptoms {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

func Default() Catalog {
	return Catalog{
		EmergencySymptoms: []string{
			"chest pain",
			"difficulty breathing",
			"severe abdominal pain",
			"loss of consciousness",
			"severe headache",
			"confusion",
			"high fever with rash",
			"severe allergic reaction",
			"signs of stroke",
			"severe bleeding",
			"thoughts of self-harm",
		},
		Questionnaires: []Questionnaire{
			{
				ID:          "symptom_checker",
				Title:       "Symptom Checker",
				Description: "Answer questions about your current symptoms for AI-powered health assessment",
				Questions: []Question{
					{
						ID:       "primary_symptoms",
						Type:     QuestionMultipleChoice,
						Question: "What are your primary symptoms? (Select all that apply)",
						Options: []string{
							"Headache", "Fever", "Cough", "Sore throat", "Fatigue",
							"Nausea", "Vomiting", "Diarrhea", "Abdominal pain",
							"Chest pain", "Difficulty breathing", "Dizziness",
							"Muscle aches", "Joint pain", "Skin rash", "Other",
						},
						Required: true,
					},
					{
						ID:       "symptom_onset",
						Type:     QuestionMultipleChoice,
						Question: "When did your symptoms start?",
						Options: []string{
							"Less than 24 hours ago",
							"1-3 days ago",
							"4-7 days ago",
							"1-2 weeks ago",
							"More than 2 weeks ago",
						},
						Required: true,
					},
					{
						ID:       "symptom_severity",
						Type:     QuestionScale,
						Question: "Rate the overall severity of your symptoms (1 = mild, 10 = severe)",
						Required: true,
					},
					{
						ID:       "temperature",
						Type:     QuestionMultipleChoice,
						Question: "Have you measured your temperature?",
						Options: []string{
							"No fever (under 100°F/37.8°C)",
							"Low fever (100-101°F/37.8-38.3°C)",
							"Moderate fever (101-103°F/38.3-39.4°C)",
							"High fever (over 103°F/39.4°C)",
							"Haven't measured",
						},
						Required: false,
					},
					{
						ID:       "additional_symptoms",
						Type:     QuestionText,
						Question: "Please describe any additional symptoms or details",
						Required: false,
					},
					{
						ID:       "medical_history",
						Type:     QuestionBoolean,
						Question: "Do you have any chronic medical conditions?",
						Required: false,
					},
					{
						ID:       "current_medications",
						Type:     QuestionBoolean,
						Question: "Are you currently taking any medications?",
						Required: false,
					},
				},
			},
			{
				ID:          "wellness_check",
				Title:       "General Wellness Assessment",
				Description: "Comprehensive wellness evaluation for preventive health",
				Questions: []Question{
					{
						ID:       "energy_level",
						Type:     QuestionScale,
						Question: "Rate your overall energy level (1 = very low, 10 = very high)",
						Required: true,
					},
					{
						ID:       "sleep_quality",
						Type:     QuestionScale,
						Question: "Rate your sleep quality (1 = very poor, 10 = excellent)",
						Required: true,
					},
					{
						ID:       "stress_level",
						Type:     QuestionScale,
						Question: "Rate your stress level (1 = very low, 10 = very high)",
						Required: true,
					},
					{
						ID:       "exercise_frequency",
						Type:     QuestionMultipleChoice,
						Question: "How often do you exercise?",
						Options: []string{
							"Daily",
							"3-5 times per week",
							"1-2 times per week",
							"Rarely",
							"Never",
						},
						Required: true,
					},
					{
						ID:       "diet_quality",
						Type:     QuestionMultipleChoice,
						Question: "How would you describe your diet?",
						Options: []string{
							"Very healthy",
							"Mostly healthy",
							"Average",
							"Somewhat unhealthy",
							"Very unhealthy",
						},
						Required: true,
					},
				},
			},
		},
	}
}
