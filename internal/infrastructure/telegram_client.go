package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"binary_joke_bot/internal/entities"
	"binary_joke_bot/internal/interfaces"
)

const defaultPollTimeout = 60

// TelegramBot long-polls the Bot API and runs each message's handler on its
// own goroutine.
type TelegramBot struct {
	Bot *tgbotapi.BotAPI

	commands    map[string]interfaces.HandlerFunc
	text        interfaces.HandlerFunc
	pollTimeout int
	logger      *slog.Logger
	wg          sync.WaitGroup
}

// NewTelegramBot connects with token; getMe must succeed.
func NewTelegramBot(token string, debug bool, logger *slog.Logger) (*TelegramBot, error) {
	return NewTelegramBotWithEndpoint(token, tgbotapi.APIEndpoint, debug, logger)
}

// NewTelegramBotWithEndpoint is NewTelegramBot against a different API
// endpoint, formatted like tgbotapi.APIEndpoint.
func NewTelegramBotWithEndpoint(token, endpoint string, debug bool, logger *slog.Logger) (*TelegramBot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	bot.Debug = debug

	return &TelegramBot{
		Bot:         bot,
		commands:    make(map[string]interfaces.HandlerFunc),
		pollTimeout: defaultPollTimeout,
		logger:      logger,
	}, nil
}

// Handle is the bot's username without "@".
func (b *TelegramBot) Handle() string {
	return b.Bot.Self.UserName
}

// HandleCommand registers h for "/name". Register before Run.
func (b *TelegramBot) HandleCommand(name string, h interfaces.HandlerFunc) {
	b.commands[name] = h
}

// HandleText registers h for text messages that are not commands.
func (b *TelegramBot) HandleText(h interfaces.HandlerFunc) {
	b.text = h
}

// Reply sends text to the chat of to, as a reply to it.
func (b *TelegramBot) Reply(ctx context.Context, to entities.Message, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(to.ChatID, text)
	msg.ReplyToMessageID = to.MessageID
	if _, err := b.Bot.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", to.ChatID, err)
	}
	return nil
}

// Run polls until ctx is cancelled, then waits for running handlers.
func (b *TelegramBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.Bot.GetUpdatesChan(u)

	b.logger.Info("telegram polling started", "bot", "@"+b.Handle())
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.Bot.StopReceivingUpdates()
			b.logger.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *TelegramBot) dispatch(ctx context.Context, update tgbotapi.Update) {
	m := update.Message
	if m == nil || m.Text == "" || m.Chat == nil {
		return
	}

	msg := entities.Message{
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
		BotHandle: b.Handle(),
	}
	if m.From != nil {
		msg.From = m.From.UserName
	}

	var handler interfaces.HandlerFunc
	if m.IsCommand() {
		if !b.addressedToUs(m.CommandWithAt()) {
			return
		}
		msg.Command = m.Command()
		handler = b.commands[msg.Command]
	} else {
		handler = b.text
	}
	if handler == nil {
		return
	}

	// In-flight handlers outlive shutdown of the poll loop.
	handlerCtx := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := handler(handlerCtx, msg); err != nil {
			b.logger.Error("handler failed", "chat_id", msg.ChatID, "command", msg.Command, "error", err)
		}
	}()
}

// addressedToUs rejects "/cmd@OtherBot".
func (b *TelegramBot) addressedToUs(commandWithAt string) bool {
	_, target, found := strings.Cut(commandWithAt, "@")
	return !found || strings.EqualFold(target, b.Handle())
}
