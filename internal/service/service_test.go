package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"
)

func TestOpenRouterService_Complete(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		captured = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"score_global\":55}"}}],"usage":{"total_tokens":42}}`))
	}))
	defer server.Close()

	svc, err := NewOpenRouterService(&config.OpenRouterConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "openai/gpt-4o-mini",
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	text, err := svc.Complete(context.Background(), CompletionRequest{
		System:      "system prompt",
		User:        "user prompt",
		Temperature: 0.3,
		MaxTokens:   1500,
		JSON:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"score_global":55}`, text)

	assert.Equal(t, "openai/gpt-4o-mini", gjson.Get(captured, "model").String())
	assert.Equal(t, "system", gjson.Get(captured, "messages.0.role").String())
	assert.Equal(t, "system prompt", gjson.Get(captured, "messages.0.content").String())
	assert.Equal(t, "user prompt", gjson.Get(captured, "messages.1.content").String())
	assert.Equal(t, int64(1500), gjson.Get(captured, "max_tokens").Int())
	assert.Equal(t, "json_object", gjson.Get(captured, "response_format.type").String())
}

func TestOpenRouterService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "upstream error status",
			status:  http.StatusTooManyRequests,
			body:    `{"error":{"message":"rate limited"}}`,
			wantErr: "status 429: rate limited",
		},
		{
			name:    "empty choices",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: "no response from LLM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc, err := NewOpenRouterService(&config.OpenRouterConfig{
				APIKey:  "test-key",
				BaseURL: server.URL,
				Model:   "m",
			}, zaptest.NewLogger(t))
			require.NoError(t, err)

			_, err = svc.Complete(context.Background(), CompletionRequest{User: "hello"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewOpenRouterService_RequiresKey(t *testing.T) {
	_, err := NewOpenRouterService(&config.OpenRouterConfig{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestGeminiService_Complete(t *testing.T) {
	var (
		path     string
		captured string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		captured = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"document_valide\":true}"}]}}]}`))
	}))
	defer server.Close()

	svc, err := newGeminiService(context.Background(), &config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.5-flash",
		Timeout: 5 * time.Second,
	}, genai.HTTPOptions{BaseURL: server.URL + "/"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	text, err := svc.Complete(context.Background(), CompletionRequest{
		System:      "grade strictly",
		User:        "plan text",
		Temperature: 0.3,
		MaxTokens:   1500,
		JSON:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"document_valide":true}`, text)

	assert.True(t, strings.HasSuffix(path, "gemini-2.5-flash:generateContent"), path)
	assert.Equal(t, "grade strictly", gjson.Get(captured, "systemInstruction.parts.0.text").String())
	assert.Equal(t, "plan text", gjson.Get(captured, "contents.0.parts.0.text").String())
	assert.Equal(t, "application/json", gjson.Get(captured, "generationConfig.responseMimeType").String())
	assert.Equal(t, int64(1500), gjson.Get(captured, "generationConfig.maxOutputTokens").Int())
}

func TestGeminiService_RejectsEmptyPrompt(t *testing.T) {
	svc := &GeminiService{RequestTimeout: time.Second, logger: zaptest.NewLogger(t)}
	_, err := svc.Complete(context.Background(), CompletionRequest{User: "  "})
	assert.Error(t, err)
}

func TestNewGeminiService_RequiresKey(t *testing.T) {
	_, err := NewGeminiService(context.Background(), &config.GeminiConfig{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestParseReference(t *testing.T) {
	bucket, key, err := ParseReference("s3://lancement/submissions/abc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "lancement", bucket)
	assert.Equal(t, "submissions/abc.pdf", key)

	assert.Equal(t, "s3://lancement/submissions/abc.pdf", Reference("lancement", "submissions/abc.pdf"))

	for _, bad := range []string{"https://example.com/a.pdf", "s3://", "s3://bucket", "s3:///key"} {
		_, _, err := ParseReference(bad)
		assert.Error(t, err, bad)
	}
}
