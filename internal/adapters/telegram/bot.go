package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/internal/adapters/config"
	"github.com/selivandex/news-sentiment/pkg/logger"
)

// Bot is a Telegram control bot serving a single chat
type Bot struct {
	api      *tgbotapi.BotAPI
	chatID   int64
	commands *Commands
}

// NewBot creates new Telegram bot
func NewBot(cfg *config.TelegramConfig, commands *Commands) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("telegram bot initialized",
		zap.String("username", api.Self.UserName),
	)

	return &Bot{
		api:      api,
		chatID:   cfg.ChatID,
		commands: commands,
	}, nil
}

// Start listens for commands until ctx is done. Commands are handled one at
// a time, so runs triggered from chat never overlap each other.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	logger.Info("telegram bot started, listening for commands")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, open := <-updates:
			if !open {
				return nil
			}
			reply, ok := b.reply(ctx, update.Message)
			if !ok {
				continue
			}
			if err := b.SendMessage(reply); err != nil {
				logger.Error("failed to send telegram response", zap.Error(err))
			}
		}
	}
}

// reply returns the response for a message and whether one should be sent.
// Messages from other chats and plain text are ignored.
func (b *Bot) reply(ctx context.Context, message *tgbotapi.Message) (string, bool) {
	if message == nil || message.Chat == nil || message.Chat.ID != b.chatID {
		return "", false
	}
	if !message.IsCommand() {
		return "", false
	}

	command := message.Command()

	logger.Info("received telegram command",
		zap.String("command", command),
		zap.Int64("from_chat", message.Chat.ID),
	)

	response, err := b.commands.Handle(ctx, command, message.CommandArguments())
	if err != nil {
		logger.Error("command handler error", zap.Error(err), zap.String("command", command))
		return fmt.Sprintf("Error: %v", err), true
	}

	return response, true
}

// SendMessage sends plain text message to the configured chat
func (b *Bot) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
