package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carelink/assessment/pkg/common/models"
)

const systemPrompt = `You are a medical AI assistant helping with preliminary health assessment.

IMPORTANT DISCLAIMERS:
- This is NOT a medical diagnosis and should not replace professional medical advice
- Always recommend consulting with healthcare professionals for proper diagnosis
- In case of emergency symptoms, always recommend immediate medical attention

Your role is to:
1. Analyze reported symptoms and provide possible explanations
2. Assess urgency level and risk factors
3. Provide general health recommendations
4. Determine if professional medical consultation is needed

Respond in JSON format with the following structure, never omitting a required field:
{
  "diagnosis": ["possible condition 1", "possible condition 2"],
  "recommendations": ["recommendation 1", "recommendation 2"],
  "urgencyLevel": "low|medium|high|emergency",
  "referralNeeded": true|false,
  "riskScore": 0-100,
  "followUpDays": number,
  "emergencyWarning": "string if emergency"
}`

// ChatBackend classifies prompts through an OpenAI-compatible
// chat-completions API. A single attempt per request: a slow or unavailable
// backend is not worth retrying when a deterministic substitute exists.
type ChatBackend struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
}

func NewChatBackend(apiKey, baseURL, modelName string, timeout time.Duration) *ChatBackend {
	return &ChatBackend{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelName:  modelName,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (b *ChatBackend) Classify(ctx context.Context, prompt string) (models.AIHealthAnalysis, error) {
	payload := map[string]interface{}{
		"model": b.modelName,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens": 800,
		// Safety-adjacent classification: keep generation near-deterministic.
		"temperature": 0.1,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return models.AIHealthAnalysis{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return models.AIHealthAnalysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return models.AIHealthAnalysis{}, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.AIHealthAnalysis{}, fmt.Errorf("failed to read backend response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.AIHealthAnalysis{}, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return models.AIHealthAnalysis{}, fmt.Errorf("failed to decode backend response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return models.AIHealthAnalysis{}, fmt.Errorf("no response from backend")
	}

	return parseVerdict(completion.Choices[0].Message.Content)
}

// parseVerdict decodes the model's JSON verdict with per-field type
// coercion: a wrong-typed field gets a cautious default instead of failing
// the whole verdict, while an unparseable document is a backend failure.
func parseVerdict(content string) (models.AIHealthAnalysis, error) {
	content = stripCodeFence(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return models.AIHealthAnalysis{}, fmt.Errorf("unparseable verdict: %w", err)
	}

	verdict := models.AIHealthAnalysis{
		Diagnosis:       decodeStrings(raw["diagnosis"]),
		Recommendations: decodeStrings(raw["recommendations"]),
		UrgencyLevel:    models.UrgencyLevel(decodeString(raw["urgencyLevel"])),
		ReferralNeeded:  decodeBool(raw["referralNeeded"], true),
		RiskScore:       decodeInt(raw["riskScore"], -1),
	}
	if days := decodeInt(raw["followUpDays"], 0); days > 0 {
		verdict.FollowUpDays = &days
	}
	verdict.EmergencyWarning = decodeString(raw["emergencyWarning"])

	return verdict, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}

func decodeStrings(raw json.RawMessage) []string {
	var out []string
	if raw == nil || json.Unmarshal(raw, &out) != nil {
		return nil
	}
	return out
}

func decodeString(raw json.RawMessage) string {
	var out string
	if raw == nil || json.Unmarshal(raw, &out) != nil {
		return ""
	}
	return out
}

func decodeBool(raw json.RawMessage, fallback bool) bool {
	var out bool
	if raw == nil || json.Unmarshal(raw, &out) != nil {
		return fallback
	}
	return out
}

func decodeInt(raw json.RawMessage, fallback int) int {
	var out float64
	if raw == nil || json.Unmarshal(raw, &out) != nil {
		return fallback
	}
	return int(out)
}
