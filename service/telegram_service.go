package service

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"egais-writeoff/metrics"
)

// TelegramService sends messages and files through the Telegram Bot API
type TelegramService struct {
	bot     *tgbotapi.BotAPI
	metrics *metrics.Registry
}

// NewTelegramService authenticates the bot token and creates a TelegramService
func NewTelegramService(token string, m *metrics.Registry) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewTelegramServiceWithBot(bot, m), nil
}

// NewTelegramServiceWithBot wraps an existing bot client
func NewTelegramServiceWithBot(bot *tgbotapi.BotAPI, m *metrics.Registry) *TelegramService {
	return &TelegramService{
		bot:     bot,
		metrics: m,
	}
}

// Ensure TelegramService implements NotifierInterface
var _ NotifierInterface = (*TelegramService)(nil)

// Bot returns the underlying client for the update loop
func (t *TelegramService) Bot() *tgbotapi.BotAPI {
	return t.bot
}

// SendMessage sends a plain text message
func (t *TelegramService) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	t.observe("message", err)
	if err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// SendDocument uploads the file at path with a caption
func (t *TelegramService) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	_, err := t.bot.Send(doc)
	t.observe("document", err)
	if err != nil {
		return fmt.Errorf("failed to send document to chat %d: %w", chatID, err)
	}
	return nil
}

func (t *TelegramService) observe(kind string, err error) {
	if t.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	t.metrics.NotificationsSent.WithLabelValues(kind, status).Inc()
}
