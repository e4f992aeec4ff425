package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEndpoint(t *testing.T, handler http.HandlerFunc) *Config {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Config{
		Provider:    ProviderLocal,
		EndpointURL: server.URL,
		ModelID:     "llama3:8b",
		Timeout:     5 * time.Second,
	}
}

func TestLocalClient_Complete(t *testing.T) {
	var got generateRequest
	config := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "hello"})
	})

	client := NewLocalClient(config)
	defer func() { _ = client.Close() }()

	text, err := client.Complete(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	assert.Equal(t, "llama3:8b", got.Model)
	assert.Equal(t, "say hello", got.Prompt)
	assert.False(t, got.Stream)
	assert.Empty(t, got.Format)
	assert.Equal(t, 0.2, got.Options.Temperature)
}

func TestLocalClient_CompleteJSON(t *testing.T) {
	var got generateRequest
	config := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "```json\n{\"ok\": true}\n```"})
	})

	client := NewLocalClient(config)
	text, err := client.CompleteJSON(context.Background(), "extract")
	require.NoError(t, err)

	assert.Equal(t, "json", got.Format)
	assert.JSONEq(t, `{"ok": true}`, text)
}

func TestLocalClient_SendsAPIKey(t *testing.T) {
	config := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
	})
	config.APIKey = "secret"

	client := NewLocalClient(config)
	_, err := client.Complete(context.Background(), "ping")
	require.NoError(t, err)
}

func TestLocalClient_HTTPError(t *testing.T) {
	config := newEndpoint(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	})

	client := NewLocalClient(config)
	_, err := client.Complete(context.Background(), "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestLocalClient_EndpointError(t *testing.T) {
	config := newEndpoint(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Error: "out of memory"})
	})

	client := NewLocalClient(config)
	_, err := client.Complete(context.Background(), "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "cloud9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM provider")
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"language fence", "```javascript\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
		{"fence with brace on first line", "```{\"a\": 1}\n```", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}
