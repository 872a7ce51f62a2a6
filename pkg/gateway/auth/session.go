// Package auth mints and verifies the patient-scoped session tokens that
// gate the assessment endpoints. Tokens are HMAC-SHA256 signed JWS; good
// enough for a demo platform, not a production identity system.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
)

type SessionManager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	nowFunc    func() time.Time
}

func NewSessionManager(secret, issuer string, ttl time.Duration) (*SessionManager, error) {
	if len(secret) < 16 {
		return nil, errors.New("session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionManager{
		signingKey: []byte(secret),
		issuer:     issuer,
		ttl:        ttl,
		nowFunc:    time.Now,
	}, nil
}

// Claims carries the caller's authorization scope: exactly one patient.
type Claims struct {
	ID        string `json:"jti"`
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	NotBefore int64  `json:"nbf"`
	ExpiresAt int64  `json:"exp"`
	PatientID string `json:"pid"`
}

type tokenHeader struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

func (m *SessionManager) IssueToken(patientID string) (string, time.Time, error) {
	if patientID == "" {
		return "", time.Time{}, errors.New("patient id required")
	}

	now := m.nowFunc()
	expiresAt := now.Add(m.ttl)
	header := tokenHeader{Algorithm: "HS256", Type: "JWT"}
	claims := Claims{
		ID:        uuid.NewString(),
		Issuer:    m.issuer,
		Subject:   patientID,
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: expiresAt.Unix(),
		PatientID: patientID,
	}

	headerSegment, err := encodeSegment(header)
	if err != nil {
		return "", time.Time{}, err
	}
	payloadSegment, err := encodeSegment(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	signature := signSegments(m.signingKey, headerSegment, payloadSegment)
	return strings.Join([]string{headerSegment, payloadSegment, signature}, "."), expiresAt, nil
}

func (m *SessionManager) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, ErrTokenInvalid
	}

	expectedSig := signSegments(m.signingKey, parts[0], parts[1])
	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, ErrTokenInvalid
	}

	var claims Claims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return nil, ErrTokenInvalid
	}

	now := m.nowFunc().Unix()
	if claims.Issuer != m.issuer {
		return nil, ErrTokenInvalid
	}
	if claims.PatientID == "" {
		return nil, ErrTokenInvalid
	}
	if now < claims.NotBefore {
		return nil, ErrTokenInvalid
	}
	if now > claims.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}

func encodeSegment(v interface{}) (string, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func decodeSegment(segment string, dst interface{}) error {
	data, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func signSegments(secret []byte, header, payload string) string {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(header))
	h.Write([]byte("."))
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
