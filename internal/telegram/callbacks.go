package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/beocch/telegram-ai-assistant/internal/settings"
)

func (app *BotApp) handleCallback(ctx context.Context, tgID int64, cb *tgbotapi.CallbackQuery) {
	app.bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == "open_settings" || data == "back_to_settings":
		app.clearPendingKey(tgID)
		us, err := app.SettingsService.GetSettings(ctx, tgID)
		if err != nil {
			log.Printf("[callback] settings fail user=%d: %v", tgID, err)
			return
		}
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, buildSettingsText(us))
		kb := buildSettingsKeyboard()
		edit.ReplyMarkup = &kb
		app.bot.Send(edit)

	case data == "open_stats":
		app.handleStats(ctx, tgID, cb.Message)

	case data == "add_api_key":
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID,
			"🔑 Добавить API-ключ\n\nВыбери провайдера:")
		kb := buildProviderKeyboard("add_key")
		edit.ReplyMarkup = &kb
		app.bot.Send(edit)

	case data == "remove_api_key":
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID,
			"🗑️ Удалить API-ключ\n\nВыбери провайдера:")
		kb := buildProviderKeyboard("remove_key")
		edit.ReplyMarkup = &kb
		app.bot.Send(edit)

	case data == "select_provider":
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID,
			"🎯 Выбери AI-провайдера:")
		kb := buildProviderKeyboard("provider")
		edit.ReplyMarkup = &kb
		app.bot.Send(edit)

	case strings.HasPrefix(data, "add_key:"):
		app.startAddAPIKey(ctx, tgID, chatID, cb.Message.MessageID, strings.TrimPrefix(data, "add_key:"))

	case strings.HasPrefix(data, "remove_key:"):
		app.removeAPIKey(ctx, tgID, chatID, strings.TrimPrefix(data, "remove_key:"))

	case strings.HasPrefix(data, "provider:"):
		app.selectProvider(ctx, tgID, chatID, strings.TrimPrefix(data, "provider:"))
	}
}

func (app *BotApp) startAddAPIKey(ctx context.Context, tgID, chatID int64, messageID int, providerName string) {
	p, err := settings.ParseProvider(providerName)
	if err != nil {
		app.bot.Send(tgbotapi.NewMessage(chatID, "❌ Неизвестный провайдер."))
		return
	}

	app.setPendingKey(tgID, p)

	text := fmt.Sprintf(
		"🔑 Добавление API-ключа для %s\n\n"+
			"Отправь свой API-ключ следующим сообщением.\n"+
			"Ключ будет зашифрован, в открытом виде он нигде не хранится.\n\n"+
			"Для отмены отправь /cancel",
		providerTitle(p),
	)
	app.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (app *BotApp) handleAPIKeyInput(ctx context.Context, tgID int64, msg *tgbotapi.Message, p settings.Provider) {
	chatID := msg.Chat.ID

	// сообщение с ключом убираем из чата
	app.bot.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID))

	mask, err := app.SettingsService.AddAPIKey(ctx, tgID, string(p), msg.Text)
	if err != nil {
		if errors.Is(err, settings.ErrInvalidKeyFormat) {
			hint := "Ключ OpenAI начинается с 'sk-'."
			if p == settings.ProviderClaude {
				hint = "Ключ Claude начинается с 'sk-ant-'."
			}
			app.setPendingKey(tgID, p) // ждём повторный ввод
			app.bot.Send(tgbotapi.NewMessage(chatID,
				"❌ Неверный формат ключа. "+hint+"\n\nПопробуй ещё раз или отправь /cancel."))
			return
		}

		log.Printf("[api_key] store fail user=%d provider=%s: %v", tgID, p, err)
		app.Notify.Notify(ctx, err, fmt.Sprintf("Не удалось сохранить API-ключ\nПользователь: %d\nПровайдер: %s", tgID, p))
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось сохранить ключ. Попробуй позже."))
		return
	}

	app.bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"✅ API-ключ для %s сохранён: %s\n\nИспользуй /settings для управления настройками.",
		providerTitle(p), mask,
	)))
	app.recordAction(ctx, tgID, chatID, "add_api_key")
}

func (app *BotApp) removeAPIKey(ctx context.Context, tgID, chatID int64, providerName string) {
	if err := app.SettingsService.RemoveAPIKey(ctx, tgID, providerName); err != nil {
		if errors.Is(err, settings.ErrInvalidProvider) {
			app.bot.Send(tgbotapi.NewMessage(chatID, "❌ Неизвестный провайдер."))
			return
		}
		log.Printf("[api_key] remove fail user=%d provider=%s: %v", tgID, providerName, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось удалить ключ. Попробуй позже."))
		return
	}

	p, _ := settings.ParseProvider(providerName)
	app.bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🗑️ Ключ %s удалён (если был настроен).", providerTitle(p),
	)))
	app.recordAction(ctx, tgID, chatID, "remove_api_key")
}

func (app *BotApp) selectProvider(ctx context.Context, tgID, chatID int64, providerName string) {
	us, err := app.SettingsService.SetPreferredProvider(ctx, tgID, providerName)
	if err != nil {
		if errors.Is(err, settings.ErrInvalidProvider) {
			app.bot.Send(tgbotapi.NewMessage(chatID, "❌ Неизвестный провайдер."))
			return
		}
		log.Printf("[provider_select] fail user=%d provider=%s: %v", tgID, providerName, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Не удалось сохранить выбор. Попробуй позже."))
		return
	}

	text := fmt.Sprintf("🎯 Провайдер переключён на %s.", providerTitle(us.PreferredProvider))
	if !us.HasKey(us.PreferredProvider) {
		text += "\n\n⚠️ Для него ещё нет API-ключа — добавь через /settings."
	}
	app.bot.Send(tgbotapi.NewMessage(chatID, text))
	app.recordAction(ctx, tgID, chatID, "select_provider")
}
