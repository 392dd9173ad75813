package telegram

import (
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/beocch/telegram-ai-assistant/internal/cache"
	"github.com/beocch/telegram-ai-assistant/internal/notify"
	"github.com/beocch/telegram-ai-assistant/internal/provider"
	"github.com/beocch/telegram-ai-assistant/internal/ratelimit"
	"github.com/beocch/telegram-ai-assistant/internal/settings"
	"github.com/beocch/telegram-ai-assistant/internal/usage"
)

type BotApp struct {
	SettingsService settings.Service
	Selector        *provider.Selector
	UsageService    usage.Service
	Cache           *cache.Client
	Limiter         *ratelimit.Limiter
	Notify          notify.Notificator

	bot *tgbotapi.BotAPI

	// пользователи, от которых ждём API-ключ следующим сообщением
	mu         sync.Mutex
	pendingKey map[int64]settings.Provider
}

func NewBotApp(
	settingsSvc settings.Service,
	selector *provider.Selector,
	usageSvc usage.Service,
	cacheClient *cache.Client,
	limiter *ratelimit.Limiter,
	notifier notify.Notificator,
) *BotApp {
	return &BotApp{
		SettingsService: settingsSvc,
		Selector:        selector,
		UsageService:    usageSvc,
		Cache:           cacheClient,
		Limiter:         limiter,
		Notify:          notifier,
		pendingKey:      make(map[int64]settings.Provider),
	}
}

func (app *BotApp) Init(token string, debug bool) error {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return err
	}
	bot.Debug = debug
	app.bot = bot

	log.Printf("[bot_app] ready: @%s", bot.Self.UserName)
	return nil
}

func (app *BotApp) Bot() *tgbotapi.BotAPI {
	return app.bot
}

func (app *BotApp) setPendingKey(userID int64, p settings.Provider) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.pendingKey[userID] = p
}

func (app *BotApp) takePendingKey(userID int64) (settings.Provider, bool) {
	app.mu.Lock()
	defer app.mu.Unlock()
	p, ok := app.pendingKey[userID]
	if ok {
		delete(app.pendingKey, userID)
	}
	return p, ok
}

func (app *BotApp) clearPendingKey(userID int64) {
	app.mu.Lock()
	defer app.mu.Unlock()
	delete(app.pendingKey, userID)
}
