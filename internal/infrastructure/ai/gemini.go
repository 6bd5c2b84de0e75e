package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/doeshing/cmdgen/internal/ports"
)

// GeminiBackend uses the Gemini API through the genai SDK.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend builds the adapter. The genai client is created eagerly so
// configuration errors surface before the first request.
func NewGeminiBackend(ctx context.Context, apiKey, endpoint, model string, httpClient *http.Client) (*GeminiBackend, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if endpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: withTrailingSlash(endpoint)}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (p *GeminiBackend) Name() string {
	return "gemini"
}

func (p *GeminiBackend) Invoke(ctx context.Context, req ports.BackendRequest) (string, error) {
	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(req.Instruction, genai.RoleUser)}, config)
	if err != nil {
		return "", classify(p.Name(), err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", malformed(p.Name(), "no candidates returned")
	}

	var parts []string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			// thinking output is never a command
			if part == nil || part.Thought {
				continue
			}
			parts = append(parts, part.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

var _ ports.Backend = (*GeminiBackend)(nil)
