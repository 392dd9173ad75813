package telegram

import (
	"strings"
	"testing"

	"github.com/beocch/telegram-ai-assistant/internal/settings"
)

func TestBuildSettingsText(t *testing.T) {
	us := &settings.UserSettings{
		UserID:            1,
		PreferredProvider: settings.ProviderOpenAI,
		Keys: map[settings.Provider]settings.APIKey{
			settings.ProviderOpenAI: {Provider: settings.ProviderOpenAI, Mask: "sk-abcdefg...wxyz"},
		},
	}

	text := buildSettingsText(us)
	if !strings.Contains(text, "OpenAI: sk-abcdefg...wxyz") {
		t.Fatalf("masked key missing:\n%s", text)
	}
	if !strings.Contains(text, "Провайдер: OpenAI") {
		t.Fatalf("preferred provider missing:\n%s", text)
	}
}

func TestBuildSettingsTextEmpty(t *testing.T) {
	us := &settings.UserSettings{UserID: 1, Keys: map[settings.Provider]settings.APIKey{}}

	text := buildSettingsText(us)
	if !strings.Contains(text, "Нет настроенных ключей") {
		t.Fatalf("empty keys notice missing:\n%s", text)
	}
	if !strings.Contains(text, "не выбран") {
		t.Fatalf("unset provider notice missing:\n%s", text)
	}
}

func TestPendingKeyState(t *testing.T) {
	app := NewBotApp(nil, nil, nil, nil, nil, nil)

	if _, ok := app.takePendingKey(1); ok {
		t.Fatalf("unexpected pending key")
	}

	app.setPendingKey(1, settings.ProviderClaude)
	p, ok := app.takePendingKey(1)
	if !ok || p != settings.ProviderClaude {
		t.Fatalf("take = %v %v", p, ok)
	}

	// take забирает состояние
	if _, ok := app.takePendingKey(1); ok {
		t.Fatalf("pending key should be consumed")
	}

	app.setPendingKey(2, settings.ProviderOpenAI)
	app.clearPendingKey(2)
	if _, ok := app.takePendingKey(2); ok {
		t.Fatalf("pending key should be cleared")
	}
}
