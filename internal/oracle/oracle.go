// Package oracle talks to the external text-analysis service used for fair
// screening.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no endpoint is set.
var ErrNotConfigured = errors.New("oracle: no endpoint configured")

// Analyzer sends a prompt and returns the JSON object the service answered
// with.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (json.RawMessage, error)
}

// Config configures an HTTPAnalyzer
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// HTTPAnalyzer posts prompts to a JSON-over-HTTP endpoint.
type HTTPAnalyzer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *zap.Logger
}

type analyzeRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

// NewHTTPAnalyzer creates an analyzer. An empty endpoint is allowed; every
// call then fails with ErrNotConfigured.
func NewHTTPAnalyzer(cfg Config, logger *zap.Logger) *HTTPAnalyzer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPAnalyzer{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Configured reports whether an endpoint is set.
func (a *HTTPAnalyzer) Configured() bool {
	return a.endpoint != ""
}

// Analyze sends the prompt once. Failures are not retried.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, prompt string) (json.RawMessage, error) {
	if !a.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(analyzeRequest{Model: a.model, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	start := time.Now()
	res, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("oracle http status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	a.logger.Debug("Oracle answered",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("status", res.StatusCode),
		zap.Duration("duration", time.Since(start)))

	return decodeAnswer(body)
}

// decodeAnswer accepts either a bare JSON object or an envelope whose text
// field holds one, possibly wrapped in a Markdown code fence.
func decodeAnswer(body []byte) (json.RawMessage, error) {
	text := strings.TrimSpace(string(body))

	var envelope map[string]any
	if err := json.Unmarshal([]byte(text), &envelope); err == nil {
		if inner := extractText(envelope); inner != "" {
			text = inner
		} else {
			return json.RawMessage(text), nil
		}
	}

	cleaned := CleanJSON(text)
	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("oracle answer is not valid JSON")
	}
	return json.RawMessage(cleaned), nil
}

func extractText(obj map[string]any) string {
	for _, k := range []string{"text", "output", "response", "message"} {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// CleanJSON strips a surrounding Markdown code fence (```json or ```) from s.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
