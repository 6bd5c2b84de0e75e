package ai

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/doeshing/cmdgen/internal/ports"
)

// OpenAIBackend uses the chat completions API. Any OpenAI-compatible server
// works when an endpoint is configured.
type OpenAIBackend struct {
	client openai.Client
	model  string
}

// NewOpenAIBackend builds the adapter. SDK-level retries are disabled so the
// retry client alone bounds the number of attempts.
func NewOpenAIBackend(apiKey, endpoint, model string, httpClient *http.Client) *OpenAIBackend {
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
	return &OpenAIBackend{
		client: openai.NewClient(options...),
		model:  model,
	}
}

func (p *OpenAIBackend) Name() string {
	return "openai"
}

func (p *OpenAIBackend) Invoke(ctx context.Context, req ports.BackendRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Instruction),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(p.Name(), err)
	}
	if len(completion.Choices) == 0 {
		return "", malformed(p.Name(), "no choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}

var _ ports.Backend = (*OpenAIBackend)(nil)
