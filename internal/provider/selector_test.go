package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/beocch/telegram-ai-assistant/internal/config"
	"github.com/beocch/telegram-ai-assistant/internal/settings"
)

type fakeSettings struct {
	preferred settings.Provider
	keys      map[settings.Provider]string
}

func (f *fakeSettings) SetPreferredProvider(context.Context, int64, string) (*settings.UserSettings, error) {
	panic("not used")
}

func (f *fakeSettings) AddAPIKey(context.Context, int64, string, string) (string, error) {
	panic("not used")
}

func (f *fakeSettings) RemoveAPIKey(context.Context, int64, string) error {
	panic("not used")
}

func (f *fakeSettings) GetSettings(_ context.Context, userID int64) (*settings.UserSettings, error) {
	us := &settings.UserSettings{
		UserID:            userID,
		PreferredProvider: f.preferred,
		Keys:              make(map[settings.Provider]settings.APIKey),
	}
	for p := range f.keys {
		us.Keys[p] = settings.APIKey{Provider: p, Mask: "***"}
	}
	return us, nil
}

func (f *fakeSettings) GetAPIKey(_ context.Context, _ int64, p settings.Provider) (string, error) {
	key, ok := f.keys[p]
	if !ok {
		return "", fmt.Errorf("no key for provider %s", p)
	}
	return key, nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxConversationHistory: 10,
		OpenAIModel:            "gpt-3.5-turbo",
		OpenAIMaxTokens:        1000,
		OpenAITemperature:      0.7,
		ClaudeModel:            "claude-3-haiku-20240307",
		ClaudeMaxTokens:        1000,
		ClaudeTemperature:      0.7,
	}
}

func TestChooseNoProviderConfigured(t *testing.T) {
	s := NewSelector(&fakeSettings{keys: map[settings.Provider]string{}}, testConfig())

	_, err := s.Choose(context.Background(), 1)
	if !errors.Is(err, ErrNoProviderConfigured) {
		t.Fatalf("err = %v, want ErrNoProviderConfigured", err)
	}
}

func TestChoosePreferredWithKey(t *testing.T) {
	s := NewSelector(&fakeSettings{
		preferred: settings.ProviderClaude,
		keys: map[settings.Provider]string{
			settings.ProviderOpenAI: "sk-openai",
			settings.ProviderClaude: "sk-ant-claude",
		},
	}, testConfig())

	sel, err := s.Choose(context.Background(), 1)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if sel.Provider != settings.ProviderClaude || sel.APIKey != "sk-ant-claude" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestChooseFallsBackToConfiguredKey(t *testing.T) {
	// предпочтение указывает на провайдера без ключа
	s := NewSelector(&fakeSettings{
		preferred: settings.ProviderOpenAI,
		keys: map[settings.Provider]string{
			settings.ProviderClaude: "sk-ant-claude",
		},
	}, testConfig())

	sel, err := s.Choose(context.Background(), 1)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if sel.Provider != settings.ProviderClaude {
		t.Fatalf("provider = %s, want claude", sel.Provider)
	}
}

func TestBuildRequestDefaultsPerProvider(t *testing.T) {
	s := NewSelector(&fakeSettings{}, testConfig())

	req := s.BuildRequest(settings.ProviderOpenAI, nil, "привет")
	if req.Model != "gpt-3.5-turbo" || req.MaxTokens != 1000 {
		t.Fatalf("openai defaults wrong: %+v", req)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "привет" {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}

	req = s.BuildRequest(settings.ProviderClaude, nil, "привет")
	if req.Model != "claude-3-haiku-20240307" {
		t.Fatalf("claude defaults wrong: %+v", req)
	}
}

func TestBuildRequestTruncatesHistory(t *testing.T) {
	s := NewSelector(&fakeSettings{}, testConfig())

	history := make([]Message, 0, 50)
	for i := 0; i < 25; i++ {
		history = append(history,
			Message{Role: "user", Content: fmt.Sprintf("q%d", i)},
			Message{Role: "assistant", Content: fmt.Sprintf("a%d", i)},
		)
	}

	req := s.BuildRequest(settings.ProviderOpenAI, history, "последний")

	// 10 ходов = 20 сообщений истории + текущее
	if len(req.Messages) != 21 {
		t.Fatalf("messages = %d, want 21", len(req.Messages))
	}
	if req.Messages[0].Content != "q15" {
		t.Fatalf("window start = %q, want q15", req.Messages[0].Content)
	}
	if req.Messages[20].Content != "последний" {
		t.Fatalf("last message = %q", req.Messages[20].Content)
	}
}

type countingClient struct {
	calls    int
	failures int
}

func (c *countingClient) Generate(context.Context, Request) (Response, error) {
	c.calls++
	if c.calls <= c.failures {
		return Response{}, fmt.Errorf("%w: boom", ErrProviderCallFailed)
	}
	return Response{Content: "ok", TotalTokens: 5}, nil
}

func TestGenerateRetriesOnce(t *testing.T) {
	s := NewSelector(&fakeSettings{}, testConfig())

	client := &countingClient{failures: 1}
	s.newClient = func(settings.Provider, string) (Client, error) {
		return client, nil
	}

	resp, err := s.Generate(context.Background(), Selection{Provider: settings.ProviderOpenAI}, Request{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "ok" {
		t.Fatalf("content = %q", resp.Content)
	}
	if client.calls != 2 {
		t.Fatalf("calls = %d, want 2", client.calls)
	}
}

func TestGenerateGivesUpAfterRetry(t *testing.T) {
	s := NewSelector(&fakeSettings{}, testConfig())

	client := &countingClient{failures: 10}
	s.newClient = func(settings.Provider, string) (Client, error) {
		return client, nil
	}

	_, err := s.Generate(context.Background(), Selection{Provider: settings.ProviderOpenAI}, Request{})
	if !errors.Is(err, ErrProviderCallFailed) {
		t.Fatalf("err = %v, want ErrProviderCallFailed", err)
	}
	if client.calls != 2 {
		t.Fatalf("calls = %d, want exactly 2 (one retry)", client.calls)
	}
}
