package refiner

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-sonnet-4-5"

// AnthropicRefiner uses the Anthropic Messages API as a clarity editor.
type AnthropicRefiner struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicRefiner creates a refiner for the given model. Extra options
// are passed to the client (a base URL in tests).
func NewAnthropicRefiner(apiKey, model string, opts ...option.RequestOption) *AnthropicRefiner {
	if model == "" {
		model = DefaultAnthropicModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &AnthropicRefiner{
		client:    &client,
		model:     model,
		maxTokens: 4096,
	}
}

func (r *AnthropicRefiner) Refine(ctx context.Context, req Request) (string, error) {
	response, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(r.model),
		MaxTokens:   r.maxTokens,
		Temperature: anthropic.Float(Temperature),
		System:      []anthropic.TextBlockParam{{Text: instructions(req.Lang)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message(req))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	return finish(responseText, req), nil
}
