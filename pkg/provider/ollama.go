package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ollama/ollama/api"
)

/*
OllamaProvider is a provider for a local Ollama daemon, resolved from
OLLAMA_HOST the way the ollama CLI does it.
*/
type OllamaProvider struct {
	client *api.Client
	model  string
}

func NewOllamaProvider(model string) (*OllamaProvider, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = "llama3.2"
	}

	return &OllamaProvider{
		client: client,
		model:  model,
	}, nil
}

func (prvdr *OllamaProvider) CompleteJSON(
	ctx context.Context, system, user string,
) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	stream := false
	request := &api.ChatRequest{
		Model:  prvdr.model,
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
		Options: map[string]any{
			"temperature": 0,
		},
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var builder strings.Builder
	err := prvdr.client.Chat(ctx, request, func(response api.ChatResponse) error {
		builder.WriteString(response.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}

	return builder.String(), nil
}
