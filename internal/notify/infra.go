package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Infra struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

func NewInfra(adminChatID int64) *Infra {
	return &Infra{adminChatID: adminChatID}
}

// SetBot — позволяет передать бота ПОСЛЕ того, как он инициализировался
func (i *Infra) SetBot(bot *tgbotapi.BotAPI) {
	i.bot = bot
}

func (i *Infra) Notify(ctx context.Context, err error, details string) {
	if i.bot == nil || i.adminChatID == 0 {
		log.Printf("[notify] admin channel not configured: %v (%s)", err, details)
		return
	}

	text := fmt.Sprintf("❗ Ошибка бота\n\nОшибка: %v\n\nДетали: %s", err, details)

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.adminChatID, text)); sendErr != nil {
		log.Printf("[notify] send fail: %v", sendErr)
	}
}
