package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

// AnthropicBackend uses the Messages API.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

// NewAnthropicBackend builds the adapter with SDK retries disabled.
func NewAnthropicBackend(apiKey, endpoint, model string, httpClient *http.Client) *AnthropicBackend {
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if endpoint != "" {
		options = append(options, option.WithBaseURL(withTrailingSlash(endpoint)))
	}
	if httpClient != nil {
		options = append(options, option.WithHTTPClient(httpClient))
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(options...),
		model:  model,
	}
}

func (p *AnthropicBackend) Name() string {
	return "anthropic"
}

func (p *AnthropicBackend) Invoke(ctx context.Context, req ports.BackendRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = domain.DefaultMaxTokens
	}
	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Instruction)),
		},
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return "", classify(p.Name(), err)
	}
	if len(message.Content) == 0 {
		return "", malformed(p.Name(), "no content blocks returned")
	}

	var parts []string
	for _, block := range message.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

var _ ports.Backend = (*AnthropicBackend)(nil)
