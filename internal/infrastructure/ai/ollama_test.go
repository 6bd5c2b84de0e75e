package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

func TestOllamaInvokeSendsGenerateRequest(t *testing.T) {
	var got ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"ls -la","done":true}`))
	}))
	defer srv.Close()

	backend := NewOllamaBackend(srv.URL+"/", "llama3.2", srv.Client())
	out, err := backend.Invoke(context.Background(), ports.BackendRequest{
		Instruction: "list files",
		Temperature: 0.7,
		MaxTokens:   64,
	})
	require.NoError(t, err)
	assert.Equal(t, "ls -la", out)
	assert.Equal(t, "llama3.2", got.Model)
	assert.Equal(t, "list files", got.Prompt)
	assert.False(t, got.Stream)
	assert.InDelta(t, 0.7, got.Options.Temperature, 1e-9)
	assert.Equal(t, 64, got.Options.NumPredict)
}

func TestOllamaInvokeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: domain.ErrBackendUnavailable},
		{name: "model missing", status: http.StatusNotFound, body: `{"error":"model not found"}`, wantErr: domain.ErrBackendUnavailable},
		{name: "not json", status: http.StatusOK, body: "<html>", wantErr: domain.ErrBackendMalformed},
		{name: "no response field", status: http.StatusOK, body: `{"done":true}`, wantErr: domain.ErrBackendMalformed},
		{name: "error field", status: http.StatusOK, body: `{"error":"out of memory"}`, wantErr: domain.ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaBackend(srv.URL, "m", srv.Client()).Invoke(context.Background(), ports.BackendRequest{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOllamaUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	backend := NewOllamaBackend(url, "m", &http.Client{})
	_, err := backend.Invoke(context.Background(), ports.BackendRequest{})
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.ErrorIs(t, backend.Check(context.Background()), domain.ErrBackendUnavailable)
}

func TestOllamaCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewOllamaBackend(srv.URL, "m", srv.Client()).Check(context.Background()))
}
