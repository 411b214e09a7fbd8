package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path string
	body map[string]any
}

func newGeminiServer(t *testing.T, status int, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			captured.path = r.URL.Path
			_ = json.Unmarshal(raw, &captured.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func candidate(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return string(b)
}

func TestNewGeminiModel(t *testing.T) {
	_, err := NewGeminiModel(context.Background(), "", "")
	assert.ErrorContains(t, err, "API key is required")

	m, err := NewGeminiModel(context.Background(), "key", "")
	require.NoError(t, err)
	assert.Equal(t, "genai:"+DefaultModel, m.Name())
}

func TestGeminiModel_Generate(t *testing.T) {
	var captured capturedRequest
	srv := newGeminiServer(t, http.StatusOK, candidate(`{"amount": 12.5}`), &captured)

	m, err := NewGeminiModel(context.Background(), "key", "gemini-1.5-flash", WithBaseURL(srv.URL))
	require.NoError(t, err)

	out, err := m.Generate(context.Background(), "extract", []byte{0x89, 0x50, 0x4e, 0x47}, "image/png")
	require.NoError(t, err)
	assert.Equal(t, `{"amount": 12.5}`, out)

	assert.True(t, strings.HasSuffix(captured.path, "models/gemini-1.5-flash:generateContent"), captured.path)

	contents, ok := captured.body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)

	inline := parts[0].(map[string]any)["inlineData"].(map[string]any)
	assert.Equal(t, "image/png", inline["mimeType"])
	assert.Equal(t, "iVBORw==", inline["data"])
	assert.Equal(t, "extract", parts[1].(map[string]any)["text"])
}

func TestGeminiModel_Generate_EmptyImage(t *testing.T) {
	m, err := NewGeminiModel(context.Background(), "key", "")
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), "extract", nil, "image/png")
	assert.ErrorContains(t, err, "image is empty")
}

func TestGeminiModel_Generate_UpstreamError(t *testing.T) {
	srv := newGeminiServer(t, http.StatusInternalServerError,
		`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`, nil)

	m, err := NewGeminiModel(context.Background(), "key", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), "extract", []byte("img"), "image/jpeg")
	assert.ErrorContains(t, err, "GenAI generate failed")
}

func TestGeminiModel_Generate_NoText(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, `{"candidates":[]}`, nil)

	m, err := NewGeminiModel(context.Background(), "key", "", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), "extract", []byte("img"), "image/jpeg")
	assert.ErrorContains(t, err, "no text returned")
}
