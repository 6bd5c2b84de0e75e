package ai

import (
	"context"
	"net/http"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

type Factory struct {
	httpClient *http.Client
}

func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
	}
}

// NewFactoryWithClient lets callers supply the transport, mainly for tests.
func NewFactoryWithClient(client *http.Client) *Factory {
	return &Factory{httpClient: client}
}

// ForConfig builds the bare adapter named by cfg. Hosted backends fail fast
// when their API key variable is unset.
func (f *Factory) ForConfig(cfg domain.Config) (ports.Backend, error) {
	name := cfg.GetBackendName()
	model := cfg.GetModel()
	if !domain.IsKnownBackend(name) {
		return nil, domain.ErrUnsupportedBackend.WithMessage(name)
	}

	switch name {
	case domain.BackendOllama:
		return NewOllamaBackend(cfg.Backend.Endpoint, model, f.httpClient), nil
	case domain.BackendOffline:
		return NewOfflineBackend(), nil
	}

	envVar := AuthEnvVar(name, cfg.Backend.AuthEnvVar)
	apiKey := resolveAuth(envVar, "")
	// a keyless OpenAI-compatible server is allowed when an endpoint is set
	if apiKey == "" && !(name == domain.BackendOpenAI && cfg.Backend.Endpoint != "") {
		return nil, domain.ErrBackendUnavailable.WithMessagef("%s: %s is not set", name, envVar)
	}

	switch name {
	case domain.BackendOpenAI:
		return NewOpenAIBackend(apiKey, cfg.Backend.Endpoint, model, f.httpClient), nil
	case domain.BackendAnthropic:
		return NewAnthropicBackend(apiKey, cfg.Backend.Endpoint, model, f.httpClient), nil
	case domain.BackendGemini:
		return NewGeminiBackend(context.Background(), apiKey, cfg.Backend.Endpoint, model, f.httpClient)
	default:
		return nil, domain.ErrUnsupportedBackend.WithMessage(name)
	}
}

var _ ports.BackendFactory = (*Factory)(nil)
