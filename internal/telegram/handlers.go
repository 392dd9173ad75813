package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/beocch/telegram-ai-assistant/internal/settings"
)

func (app *BotApp) handleStart(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	name := ""
	if msg.From != nil {
		name = msg.From.FirstName
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"🤖 Я AI-ассистент. Отправь мне сообщение — и я отвечу с помощью OpenAI или Claude.\n\n"+
			"Для работы нужен твой API-ключ провайдера: добавь его через /settings.\n\n"+
			"📋 Команды:\n"+
			"/help — справка\n"+
			"/settings — ключи и предпочтения\n"+
			"/providers — выбрать провайдера\n"+
			"/status — статус провайдеров\n"+
			"/stats — статистика использования\n"+
			"/clear — очистить историю разговора",
		name,
	)

	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyMarkup = buildStartKeyboard()
	app.bot.Send(out)

	app.recordAction(ctx, tgID, msg.Chat.ID, "start_command")
}

func (app *BotApp) handleHelp(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	text := "🤖 Справка\n\n" +
		"Просто напиши сообщение — я передам его выбранному AI-провайдеру и верну ответ. " +
		"Контекст последних реплик сохраняется.\n\n" +
		"Команды:\n" +
		"/start — начать работу\n" +
		"/settings — API-ключи и предпочтения\n" +
		"/providers — выбрать AI-провайдера\n" +
		"/status — статус провайдеров\n" +
		"/stats — статистика использования\n" +
		"/clear — очистить историю разговора\n" +
		"/cancel — отменить текущее действие\n\n" +
		"Ограничения: до 30 запросов в минуту, история до 10 ходов."

	app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, text))
	app.recordAction(ctx, tgID, msg.Chat.ID, "help_command")
}

func (app *BotApp) handleSettings(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	us, err := app.SettingsService.GetSettings(ctx, tgID)
	if err != nil {
		log.Printf("[settings_cmd] get fail user=%d: %v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Не удалось загрузить настройки. Попробуй позже."))
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, buildSettingsText(us))
	out.ReplyMarkup = buildSettingsKeyboard()
	app.bot.Send(out)

	app.recordAction(ctx, tgID, msg.Chat.ID, "settings_command")
}

func (app *BotApp) handleProviders(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	out := tgbotapi.NewMessage(msg.Chat.ID, "🎯 Выбери AI-провайдера:")
	out.ReplyMarkup = buildProviderKeyboard("provider")
	app.bot.Send(out)

	app.recordAction(ctx, tgID, msg.Chat.ID, "providers_command")
}

func (app *BotApp) handleStatus(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	us, err := app.SettingsService.GetSettings(ctx, tgID)
	if err != nil {
		log.Printf("[status_cmd] get fail user=%d: %v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "⚠️ Не удалось получить статус. Попробуй позже."))
		return
	}

	var b strings.Builder
	b.WriteString("🤖 Статус AI-провайдеров:\n\n")
	for _, p := range settings.AllProviders() {
		if us.HasKey(p) {
			b.WriteString(fmt.Sprintf("✅ %s — ключ настроен\n", providerTitle(p)))
		} else {
			b.WriteString(fmt.Sprintf("❌ %s — ключ не настроен\n", providerTitle(p)))
		}
	}
	if us.PreferredProvider != "" {
		b.WriteString(fmt.Sprintf("\n🎯 Текущий провайдер: %s", providerTitle(us.PreferredProvider)))
	} else {
		b.WriteString("\n🎯 Провайдер не выбран — используй /providers")
	}

	app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, b.String()))
	app.recordAction(ctx, tgID, msg.Chat.ID, "status_command")
}

func (app *BotApp) handleStats(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	stats, err := app.UsageService.GetStats(ctx, tgID)
	if err != nil {
		log.Printf("[stats_cmd] get fail user=%d: %v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "❌ Произошла ошибка при получении статистики. Попробуй позже."))
		return
	}

	var text string
	if stats == nil {
		text = "📊 Статистика использования\n\n" +
			"У тебя пока нет статистики.\n" +
			"Начни общение с ботом, чтобы увидеть данные!"
	} else {
		text = fmt.Sprintf(
			"📊 Статистика использования\n\n"+
				"Сообщения:\n"+
				"• Всего: %s\n"+
				"• Сегодня: %d\n"+
				"• На этой неделе: %d\n\n"+
				"Активность:\n"+
				"• Первое использование: %s\n"+
				"• Последнее использование: %s\n\n"+
				"Токены:\n"+
				"• Использовано: %s\n"+
				"• Средняя длина ответа: %d символов",
			humanize.Comma(stats.TotalMessages),
			stats.MessagesToday,
			stats.MessagesThisWeek,
			stats.FirstUsed.Format("2006-01-02 15:04:05"),
			stats.LastUsed.Format("2006-01-02 15:04:05"),
			humanize.Comma(stats.TokensUsed),
			stats.AvgResponseLength,
		)
	}

	app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, text))
	app.recordAction(ctx, tgID, msg.Chat.ID, "stats_command")
}

func (app *BotApp) handleClear(ctx context.Context, tgID int64, msg *tgbotapi.Message) {
	if err := app.Cache.ClearHistory(ctx, tgID); err != nil {
		log.Printf("[clear_cmd] cache clear fail user=%d: %v", tgID, err)
	}
	if err := app.UsageService.ClearInteractions(ctx, tgID); err != nil {
		log.Printf("[clear_cmd] interactions clear fail user=%d: %v", tgID, err)
		app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "⚠️ История очищена частично. Попробуй ещё раз."))
		return
	}

	app.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "🗑️ История разговора очищена."))
	app.recordAction(ctx, tgID, msg.Chat.ID, "clear_command")
}

// recordAction — учёт команды, длины нулевые
func (app *BotApp) recordAction(ctx context.Context, tgID, chatID int64, action string) {
	_ = app.UsageService.Record(ctx, tgID, chatID, action, "command", 0, 0, 0)
}

func providerTitle(p settings.Provider) string {
	switch p {
	case settings.ProviderOpenAI:
		return "OpenAI"
	case settings.ProviderClaude:
		return "Claude"
	default:
		return string(p)
	}
}

func buildSettingsText(us *settings.UserSettings) string {
	var b strings.Builder
	b.WriteString("⚙️ Твои настройки:\n\n")

	b.WriteString("🔑 API-ключи:\n")
	if len(us.Keys) == 0 {
		b.WriteString("• Нет настроенных ключей\n")
	} else {
		for _, p := range settings.AllProviders() {
			if k, ok := us.Keys[p]; ok {
				b.WriteString(fmt.Sprintf("• %s: %s\n", providerTitle(p), k.Mask))
			}
		}
	}

	b.WriteString("\n🎯 Провайдер: ")
	if us.PreferredProvider != "" {
		b.WriteString(providerTitle(us.PreferredProvider))
	} else {
		b.WriteString("не выбран")
	}
	return b.String()
}
