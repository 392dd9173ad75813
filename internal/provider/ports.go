package provider

import (
	"context"
	"errors"
)

var (
	ErrNoProviderConfigured = errors.New("no provider configured")
	ErrProviderCallFailed   = errors.New("provider call failed")
)

type Message struct {
	Role    string // "user" | "assistant"
	Content string
}

// Request — собранный запрос к провайдеру
type Request struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client — клиент одного LLM-провайдера
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
