package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padding", "  {\"a\":1}  \n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestAnalyzeNotConfigured(t *testing.T) {
	a := NewHTTPAnalyzer(Config{}, zap.NewNop())
	assert.False(t, a.Configured())

	_, err := a.Analyze(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAnalyzeEnvelopeWithFence(t *testing.T) {
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"` + "```json\\n{\\\"merit_score\\\": 82}\\n```" + `"}`))
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(Config{Endpoint: srv.URL, APIKey: "secret", Model: "m1"}, zap.NewNop())
	out, err := a.Analyze(context.Background(), "evaluate")
	require.NoError(t, err)

	assert.Equal(t, "m1", got.Model)
	assert.Equal(t, "evaluate", got.Prompt)
	assert.JSONEq(t, `{"merit_score": 82}`, string(out))
}

func TestAnalyzeBareObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"bias_detected": false, "bias_score": 3}`))
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(Config{Endpoint: srv.URL}, zap.NewNop())
	out, err := a.Analyze(context.Background(), "p")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bias_detected": false, "bias_score": 3}`, string(out))
}

func TestAnalyzeErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Path {
		case "/fail":
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		case "/prose":
			_, _ = w.Write([]byte(`{"text":"I cannot answer that"}`))
		}
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(Config{Endpoint: srv.URL + "/fail"}, zap.NewNop())
	_, err := a.Analyze(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, 1, calls)

	a = NewHTTPAnalyzer(Config{Endpoint: srv.URL + "/prose"}, zap.NewNop())
	_, err = a.Analyze(context.Background(), "p")
	assert.Error(t, err)
}

func TestAnalyzeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	a := NewHTTPAnalyzer(Config{Endpoint: srv.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())
	_, err := a.Analyze(context.Background(), "p")
	assert.Error(t, err)
}
