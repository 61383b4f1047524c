package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/logger"
)

const classifierPrompt = `You are a food safety analyst. For each ingredient that may pose a health
risk, return an entry with: ingredient, risk_level (low, medium, high or critical),
category (sweetener, dye, preservative, fat, sugar, sodium, stimulant or other),
concern (one sentence) and affected_profiles (member types or health conditions
such as child, pregnant, diabetic, hypertensive). Omit harmless ingredients.
Respond with JSON only: {"flags": [...]}`

// LLMClassifier classifies ingredients through an OpenAI-compatible chat
// completions endpoint.
type LLMClassifier struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logger.Logger
}

var _ IngredientClassifier = (*LLMClassifier)(nil)

func NewLLMClassifier(baseURL, apiKey, model string, timeout time.Duration, log *logger.Logger) *LLMClassifier {
	return &LLMClassifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *LLMClassifier) Classify(ctx context.Context, ingredients []string, profiles []string) ([]engine.AIFlag, error) {
	user := fmt.Sprintf("Household profiles: %s\nIngredients: %s",
		strings.Join(profiles, ", "), strings.Join(ingredients, "; "))

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: classifierPrompt},
			{Role: "user", Content: user},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode classifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	var out struct {
		Flags []engine.AIFlag `json:"flags"`
	}
	content := stripCodeFence(chat.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse classifier flags: %w", err)
	}

	c.log.Debug("classifier responded", "model", c.model, "flags", len(out.Flags), "duration", time.Since(start))
	return out.Flags, nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
