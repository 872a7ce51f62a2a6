package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	m, err := NewSessionManager("unit-test-session-secret", "assessment-service", time.Hour)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return m
}

func TestIssueAndValidateToken(t *testing.T) {
	m := newTestManager(t)

	token, expiresAt, err := m.IssueToken("patient-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expected future expiry")
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.PatientID != "patient-a" {
		t.Fatalf("expected patient-a scope, got %q", claims.PatientID)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	m := newTestManager(t)

	token, _, err := m.IssueToken("patient-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := strings.Split(token, ".")
	forged, err := encodeSegment(Claims{PatientID: "patient-b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tampered := strings.Join([]string{parts[0], forged, parts[2]}, ".")

	if _, err := m.ValidateToken(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := newTestManager(t)
	issued := time.Now().Add(-3 * time.Hour)
	m.nowFunc = func() time.Time { return issued }

	token, _, err := m.IssueToken("patient-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.nowFunc = time.Now
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := newTestManager(t)
	for _, token := range []string{"", "abc", "a.b", "a.b.c.d"} {
		if _, err := m.ValidateToken(token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}

func TestNewSessionManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewSessionManager("short", "svc", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestIssueTokenRequiresPatient(t *testing.T) {
	m := newTestManager(t)
	if _, _, err := m.IssueToken(""); err == nil {
		t.Fatal("expected error for empty patient id")
	}
}
