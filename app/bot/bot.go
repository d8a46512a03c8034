// Package bot answers Telegram commands of the shop staff chat.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"egais-writeoff/models"
	"egais-writeoff/service"
	"egais-writeoff/utils"
)

const helpText = `Команды:
/egais [ГГГГ-ММ-ДД] [alcohol|non_alcohol|snack] - списание за вчера или за указанный день
/today [alcohol|non_alcohol|snack] - списание за сегодня
/sync - обновить справочник ЕГАИС наименований из Контур.Маркета`

// Bot dispatches commands to the write-off and assortment services
type Bot struct {
	api        *tgbotapi.BotAPI
	writeoff   service.WriteoffServiceInterface
	assortment service.AssortmentSyncServiceInterface // optional
	notifier   service.NotifierInterface
	allowed    func(chatID int64) bool
	location   *time.Location
	now        func() time.Time
}

// New creates a new Bot. assortment may be nil when Kontur.Market is not configured.
func New(
	api *tgbotapi.BotAPI,
	writeoff service.WriteoffServiceInterface,
	assortment service.AssortmentSyncServiceInterface,
	notifier service.NotifierInterface,
	allowed func(chatID int64) bool,
	location *time.Location,
) *Bot {
	if allowed == nil {
		allowed = func(int64) bool { return true }
	}
	if location == nil {
		location = time.Local
	}
	return &Bot{
		api:        api,
		writeoff:   writeoff,
		assortment: assortment,
		notifier:   notifier,
		allowed:    allowed,
		location:   location,
		now:        time.Now,
	}
}

// Run polls updates until ctx is done
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	log.Printf("🤖 Bot @%s is polling updates", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Printf("🤖 Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			b.HandleCommand(ctx, update.Message.Chat.ID, update.Message.Command(), update.Message.CommandArguments())
		}
	}
}

// HandleCommand runs one command for the chat
func (b *Bot) HandleCommand(ctx context.Context, chatID int64, command, args string) {
	log.Printf("📥 HandleCommand: chat=%d command=/%s args=%q", chatID, command, args)

	if !b.allowed(chatID) {
		log.Printf("⛔ HandleCommand: chat %d is not allowed", chatID)
		return
	}

	switch command {
	case "egais":
		day, goodType, err := b.parseArgs(args, b.now().In(b.location).AddDate(0, 0, -1))
		if err != nil {
			b.reply(ctx, chatID, err.Error())
			return
		}
		b.sendWriteoff(ctx, chatID, goodType, day)
	case "today":
		day, goodType, err := b.parseArgs(args, b.now().In(b.location))
		if err != nil {
			b.reply(ctx, chatID, err.Error())
			return
		}
		b.sendWriteoff(ctx, chatID, goodType, day)
	case "sync":
		b.syncAssortment(ctx, chatID)
	case "start", "help":
		b.reply(ctx, chatID, helpText)
	default:
		b.reply(ctx, chatID, "Неизвестная команда.\n"+helpText)
	}
}

// parseArgs reads an optional date and an optional product type in any order
func (b *Bot) parseArgs(args string, defaultDay time.Time) (time.Time, models.ProductType, error) {
	day := defaultDay
	goodType := models.ProductTypeAlcohol
	for _, arg := range strings.Fields(args) {
		if parsed, err := utils.ParseDay(arg, b.location); err == nil {
			day = parsed
			continue
		}
		t, err := models.ParseProductType(arg)
		if err != nil {
			return time.Time{}, "", fmt.Errorf("Не понимаю %q. Дата в формате ГГГГ-ММ-ДД, тип: alcohol, non_alcohol или snack", arg)
		}
		goodType = t
	}
	return day, goodType, nil
}

// sendWriteoff runs the delivery; the service itself tells the chat about failures
func (b *Bot) sendWriteoff(ctx context.Context, chatID int64, goodType models.ProductType, day time.Time) {
	run, err := b.writeoff.SendWriteoff(ctx, chatID, goodType, day)
	if err != nil {
		if !errors.Is(err, service.ErrWriteoffNotReady) {
			log.Printf("❌ sendWriteoff: %v", err)
		}
		return
	}
	log.Printf("✅ sendWriteoff: run %s sent to chat %d", run.ID, chatID)
}

func (b *Bot) syncAssortment(ctx context.Context, chatID int64) {
	if b.assortment == nil {
		b.reply(ctx, chatID, "Синхронизация с Контур.Маркетом не настроена")
		return
	}
	b.reply(ctx, chatID, "Обновляю справочник ЕГАИС...")
	n, err := b.assortment.Sync(ctx)
	if err != nil {
		log.Printf("❌ syncAssortment: %v", err)
		b.reply(ctx, chatID, "Не удалось обновить справочник ЕГАИС")
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("Справочник ЕГАИС обновлён: %d наименований", n))
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.notifier.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("⚠️ reply to chat %d failed: %v", chatID, err)
	}
}
