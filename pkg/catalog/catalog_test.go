package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()
	if len(cat.EmergencySymptoms) != 11 {
		t.Fatalf("expected 11 emergency symptoms, got %d", len(cat.EmergencySymptoms))
	}
	if len(cat.Questionnaires) != 2 {
		t.Fatalf("expected 2 questionnaires, got %d", len(cat.Questionnaires))
	}
	for _, q := range cat.Questionnaires {
		if q.ID == "" || len(q.Questions) == 0 {
			t.Fatalf("incomplete questionnaire: %+v", q)
		}
	}
}

func TestIsEmergencyMatching(t *testing.T) {
	cat := Default()

	cases := []struct {
		symptom string
		want    bool
	}{
		{"Chest pain", true},
		{"crushing CHEST PAIN radiating to arm", true},
		{"difficulty breathing", true},
		{"Headache", false},
		{"severe headache", true},
		{"mild cough", false},
	}
	for _, tc := range cases {
		if got := cat.IsEmergency(tc.symptom); got != tc.want {
			t.Fatalf("IsEmergency(%q) = %v, want %v", tc.symptom, got, tc.want)
		}
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.EmergencySymptoms) == 0 {
		t.Fatal("expected default emergency symptoms")
	}
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := []byte(`
emergency_symptoms:
  - "chest pain"
  - "stroke symptoms"
questionnaires:
  - id: quick_check
    title: Quick Check
    description: Minimal triage
    questions:
      - id: main
        type: text
        question: What is bothering you?
        required: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cat.EmergencySymptoms) != 2 {
		t.Fatalf("expected 2 emergency symptoms, got %d", len(cat.EmergencySymptoms))
	}
	if cat.Questionnaires[0].Questions[0].Type != QuestionText {
		t.Fatalf("unexpected question type %q", cat.Questionnaires[0].Questions[0].Type)
	}
}

func TestLoadRejectsCatalogWithoutEmergencyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("questionnaires: []\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	cat, err := Load(path)
	if err == nil {
		t.Fatal("expected error for catalog without emergency symptoms")
	}
	if len(cat.EmergencySymptoms) == 0 {
		t.Fatal("expected built-in default alongside the error")
	}
}

func TestLoadErrorPathsFallBackToDefault(t *testing.T) {
	want := Default()

	malformed := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(malformed, []byte("emergency_symptoms: {not: a list\n"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	for _, path := range []string{
		filepath.Join(t.TempDir(), "missing.yaml"),
		malformed,
	} {
		cat, err := Load(path)
		if err == nil {
			t.Fatalf("expected error for %s", path)
		}
		if len(cat.EmergencySymptoms) != len(want.EmergencySymptoms) {
			t.Fatalf("expected default emergency list for %s, got %d entries", path, len(cat.EmergencySymptoms))
		}
		if len(cat.Questionnaires) != len(want.Questionnaires) {
			t.Fatalf("expected default questionnaires for %s, got %d", path, len(cat.Questionnaires))
		}
		if !cat.IsEmergency("chest pain") {
			t.Fatalf("fallback catalog for %s must still detect emergencies", path)
		}
	}
}
