package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/beocch/telegram-ai-assistant/internal/settings"
)

func buildStartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки", "open_settings"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "open_stats"),
		),
	)
}

func buildSettingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔑 Добавить ключ", "add_api_key"),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Удалить ключ", "remove_api_key"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Выбрать провайдера", "select_provider"),
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", "open_stats"),
		),
	)
}

// buildProviderKeyboard — клавиатура выбора провайдера;
// prefix определяет действие: provider | add_key | remove_key
func buildProviderKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(settings.AllProviders()))
	for _, p := range settings.AllProviders() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"🤖 "+providerTitle(p),
			prefix+":"+string(p),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", "back_to_settings"),
		),
	)
}
