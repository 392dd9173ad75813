package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/beocch/telegram-ai-assistant/internal/provider"
)

func (app *BotApp) handleText(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userText := msg.Text

	log.Printf("[text] start tgID=%d len=%d", tgID, len(userText))

	if !app.Limiter.Allow(ctx, tgID) {
		app.bot.Send(tgbotapi.NewMessage(chatID,
			"⚠️ Слишком много запросов! Подожди немного перед следующим сообщением."))
		return
	}

	app.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	// === 1. выбор провайдера ===
	sel, err := app.Selector.Choose(ctx, tgID)
	if err != nil {
		if errors.Is(err, provider.ErrNoProviderConfigured) {
			app.bot.Send(tgbotapi.NewMessage(chatID,
				"🔑 У тебя не настроен ни один AI-провайдер.\n"+
					"Добавь API-ключ через /settings, чтобы начать общение."))
			return
		}
		log.Printf("[text] choose fail tgID=%d: %v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Ошибка при обработке запроса. Попробуй позже."))
		return
	}

	// === 2. история из кэша ===
	history, err := app.Cache.GetHistory(ctx, tgID)
	if err != nil {
		log.Printf("[text] history fail tgID=%d: %v", tgID, err)
		history = nil // деградируем до запроса без контекста
	}

	// === 3. запрос к провайдеру (внутри один повтор) ===
	req := app.Selector.BuildRequest(sel.Provider, history, userText)
	resp, err := app.Selector.Generate(ctx, sel, req)
	if err != nil {
		log.Printf("[text] generate fail tgID=%d provider=%s: %v", tgID, sel.Provider, err)

		app.Notify.Notify(ctx, err, fmt.Sprintf(
			"❗ Ошибка ответа провайдера\n\nПровайдер: %s\nПользователь: %d\nТекст: %q",
			sel.Provider, tgID, userText,
		))

		app.bot.Send(tgbotapi.NewMessage(chatID,
			"❌ Произошла ошибка при обработке сообщения. Попробуй позже."))
		return
	}

	// === 4. отправляем ответ ===
	app.bot.Send(tgbotapi.NewMessage(chatID, resp.Content))

	// === 5. кэш истории и учёт ===
	if err := app.Cache.AppendHistory(ctx, tgID, userText, resp.Content); err != nil {
		log.Printf("[text] history append fail tgID=%d: %v", tgID, err)
	}

	_ = app.UsageService.Record(ctx, tgID, chatID, "message", "text",
		len(userText), len(resp.Content), int64(resp.TotalTokens))

	log.Printf("[text] done tgID=%d provider=%s tokens=%d", tgID, sel.Provider, resp.TotalTokens)
}
