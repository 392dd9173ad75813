package provider

import (
	"fmt"

	"github.com/beocch/telegram-ai-assistant/internal/settings"
)

// NewClient создаёт клиента провайдера с пользовательским ключом.
func NewClient(p settings.Provider, apiKey string) (Client, error) {
	switch p {
	case settings.ProviderOpenAI:
		return NewOpenAIClient(apiKey), nil
	case settings.ProviderClaude:
		return NewClaudeClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", p)
	}
}
