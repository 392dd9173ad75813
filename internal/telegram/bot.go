package telegram

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Run — главный цикл получения апдейтов
func (app *BotApp) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := app.bot.GetUpdatesChan(u)
	log.Printf("[bot_loop] started username=@%s", app.bot.Self.UserName)

	for update := range updates {
		ctx := context.Background()

		tgID := extractTelegramID(update)
		if tgID == 0 {
			continue
		}

		log.Printf("[bot_touch] fromTG=%d updateID=%d", tgID, update.UpdateID)
		app.dispatchUpdate(ctx, tgID, update)
	}
}

func (app *BotApp) dispatchUpdate(ctx context.Context, tgID int64, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		app.handleMessage(ctx, tgID, update.Message)
	case update.CallbackQuery != nil:
		app.handleCallback(ctx, tgID, update.CallbackQuery)
	}
}

func (app *BotApp) handleMessage(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		app.handleCommand(ctx, tgID, msg)
		return
	}

	if msg.Text == "" {
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "📎 Я понимаю только текстовые сообщения."))
		return
	}

	// ожидаем ли от пользователя API-ключ
	if p, ok := app.takePendingKey(tgID); ok {
		app.handleAPIKeyInput(ctx, tgID, msg, p)
		return
	}

	app.handleText(ctx, tgID, msg)
}

func (app *BotApp) handleCommand(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	// любая команда отменяет ввод ключа
	app.clearPendingKey(tgID)

	switch strings.ToLower(msg.Command()) {
	case "start":
		app.handleStart(ctx, tgID, msg)
	case "help":
		app.handleHelp(ctx, tgID, msg)
	case "settings":
		app.handleSettings(ctx, tgID, msg)
	case "providers":
		app.handleProviders(ctx, tgID, msg)
	case "status":
		app.handleStatus(ctx, tgID, msg)
	case "stats":
		app.handleStats(ctx, tgID, msg)
	case "clear":
		app.handleClear(ctx, tgID, msg)
	case "cancel":
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "Действие отменено."))
	default:
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "Неизвестная команда. Используй /help."))
	}
}

func extractTelegramID(u tgbotapi.Update) int64 {
	switch {
	case u.Message != nil && u.Message.From != nil:
		return u.Message.From.ID
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		return u.CallbackQuery.From.ID
	default:
		return 0
	}
}
