package gateway

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rohan/kriya/internal/agent"
)

// TelegramGateway treats every incoming message as a goal: plan it,
// run it, reply with the execution report.
type TelegramGateway struct {
	Bot    *tgbotapi.BotAPI
	Runner agent.Runner
}

func NewTelegramGateway(token string, runner agent.Runner) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:    bot,
		Runner: runner,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
		report, err := tg.Runner.Run(context.Background(), chatID, update.Message.Text)
		if err != nil {
			log.Printf("Error running goal: %v", err)
			report = fmt.Sprintf("I couldn't finish that goal: %v", err)
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, report)
		if _, err := tg.Bot.Send(msg); err != nil {
			log.Printf("Error sending reply: %v", err)
		}
	}
	return nil
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(id, text)
	_, err = tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
