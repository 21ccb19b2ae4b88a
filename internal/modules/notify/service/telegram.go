package service

import (
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_server/internal/models"
)

// Telegram зеркалит события жизненного цикла в чат оператора.
// Подписчики всё равно получают события через Hub; это только witness-канал.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
	}, nil
}

func (t *Telegram) Publish(_ string, event models.OrderEvent) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}

	entry := "MARKET"
	if event.EntryPrice != nil {
		entry = *event.EntryPrice
	}
	msg := fmt.Sprintf("📣 %s\n%s %s @%s\nSL %s / TP %s\norder %s (%s)",
		event.Type, event.Action, event.Instrument, entry,
		event.StopLoss, event.TakeProfit, event.OrderID, event.Owner)

	_, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg))
	return err
}
