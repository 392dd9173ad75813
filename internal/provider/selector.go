package provider

import (
	"context"
	"log"

	"github.com/beocch/telegram-ai-assistant/internal/config"
	"github.com/beocch/telegram-ai-assistant/internal/settings"
)

const systemPrompt = "Ты — дружелюбный AI-ассистент. Отвечай кратко и по делу, на языке пользователя."

type Selection struct {
	Provider settings.Provider
	APIKey   string
}

// Selector выбирает провайдера по настройкам пользователя и собирает запрос.
type Selector struct {
	settings   settings.Service
	openAI     config.ProviderConfig
	claude     config.ProviderConfig
	maxHistory int

	// подменяется в тестах
	newClient func(p settings.Provider, apiKey string) (Client, error)
}

func NewSelector(settingsSvc settings.Service, cfg *config.Config) *Selector {
	return &Selector{
		settings:   settingsSvc,
		openAI:     cfg.OpenAI(),
		claude:     cfg.Claude(),
		maxHistory: cfg.MaxConversationHistory,
		newClient:  NewClient,
	}
}

// Choose — предпочитаемый провайдер с ключом, иначе любой настроенный.
func (s *Selector) Choose(ctx context.Context, userID int64) (Selection, error) {
	us, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return Selection{}, err
	}

	p := us.PreferredProvider
	if p == "" || !us.HasKey(p) {
		p = ""
		for _, candidate := range settings.AllProviders() {
			if us.HasKey(candidate) {
				p = candidate
				break
			}
		}
	}
	if p == "" {
		return Selection{}, ErrNoProviderConfigured
	}

	key, err := s.settings.GetAPIKey(ctx, userID, p)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Provider: p, APIKey: key}, nil
}

// BuildRequest собирает исходящий запрос: дефолты провайдера плюс история,
// обрезанная фиксированным окном в maxHistory ходов.
func (s *Selector) BuildRequest(p settings.Provider, history []Message, userText string) Request {
	pc := s.openAI
	if p == settings.ProviderClaude {
		pc = s.claude
	}

	maxMessages := s.maxHistory * 2 // ход = реплика пользователя + ответ
	if len(history) > maxMessages {
		history = history[len(history)-maxMessages:]
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: userText})

	return Request{
		Model:       pc.Model,
		System:      systemPrompt,
		Messages:    messages,
		MaxTokens:   pc.MaxTokens,
		Temperature: pc.Temperature,
	}
}

// Generate выполняет запрос; при ошибке провайдера повторяет его один раз.
func (s *Selector) Generate(ctx context.Context, sel Selection, req Request) (Response, error) {
	client, err := s.newClient(sel.Provider, sel.APIKey)
	if err != nil {
		return Response{}, err
	}

	resp, err := client.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}

	log.Printf("[provider] call fail provider=%s, retrying once: %v", sel.Provider, err)
	return client.Generate(ctx, req)
}
