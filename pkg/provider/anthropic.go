package provider

import (
	"context"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

/*
AnthropicProvider is a provider for the Anthropic API. Anthropic has no
JSON response mode, so the schema discipline rides entirely on the
system prompt; malformed output is handled by the extraction validator
like any other failure.
*/
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	if model == "" {
		model = string(anthropic.ModelClaude3_5HaikuLatest)
	}

	return &AnthropicProvider{
		client: &client,
		model:  model,
	}
}

func (prvdr *AnthropicProvider) CompleteJSON(
	ctx context.Context, system, user string,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	message, err := prvdr.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(prvdr.model),
		MaxTokens:   2048,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	return builder.String(), nil
}
