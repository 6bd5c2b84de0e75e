package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/cmdgen/internal/ports"
)

const defaultOllamaEndpoint = "http://localhost:11434"

// OllamaBackend talks to a local Ollama server over its native API.
type OllamaBackend struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response *string `json:"response"`
	Error    string  `json:"error"`
}

// NewOllamaBackend builds the adapter. An empty endpoint means localhost:11434.
func NewOllamaBackend(endpoint, model string, client *http.Client) *OllamaBackend {
	return &OllamaBackend{
		endpoint:   strings.TrimRight(valueOrDefault(endpoint, defaultOllamaEndpoint), "/"),
		model:      model,
		httpClient: client,
	}
}

func (o *OllamaBackend) Name() string {
	return "ollama"
}

// Invoke posts one non-streaming generate request.
func (o *OllamaBackend) Invoke(ctx context.Context, req ports.BackendRequest) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  o.model,
		Prompt: req.Instruction,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", classify(o.Name(), err)
	}
	httpReq.Header.Set("content-type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", classify(o.Name(), err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(o.Name(), err)
	}
	if resp.StatusCode >= 400 {
		return "", classify(o.Name(), fmt.Errorf("%s: %s", resp.Status, snippet(payload)))
	}

	var decoded ollamaGenerateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", malformed(o.Name(), "response is not JSON")
	}
	if decoded.Error != "" {
		return "", classify(o.Name(), fmt.Errorf("%s", decoded.Error))
	}
	if decoded.Response == nil {
		return "", malformed(o.Name(), `missing "response" field`)
	}
	return *decoded.Response, nil
}

// Check lists installed models, which is the cheapest request proving the server is up.
func (o *OllamaBackend) Check(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"/api/tags", nil)
	if err != nil {
		return classify(o.Name(), err)
	}
	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return classify(o.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return classify(o.Name(), fmt.Errorf("status %s", resp.Status))
	}
	return nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 160 {
		return s[:160] + "..."
	}
	return s
}

var (
	_ ports.Backend       = (*OllamaBackend)(nil)
	_ ports.HealthChecker = (*OllamaBackend)(nil)
)
