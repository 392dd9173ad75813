package provider

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

type ClaudeClient struct {
	client *anthropic.Client
}

func NewClaudeClient(apiKey string) *ClaudeClient {
	return &ClaudeClient{client: anthropic.NewClient(apiKey)}
}

func (c *ClaudeClient) Generate(ctx context.Context, req Request) (Response, error) {
	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case "assistant":
			messages = append(messages, anthropic.NewAssistantTextMessage(m.Content))
		default:
			messages = append(messages, anthropic.NewUserTextMessage(m.Content))
		}
	}

	temp := req.Temperature
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      req.System,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrProviderCallFailed, err)
	}
	if len(resp.Content) == 0 {
		return Response{}, fmt.Errorf("%w: empty content", ErrProviderCallFailed)
	}

	return Response{
		Content:          resp.Content[0].GetText(),
		Model:            string(resp.Model),
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}
