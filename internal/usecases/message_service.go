package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"binary_joke_bot/internal/entities"
	"binary_joke_bot/internal/interfaces"
)

const (
	startTemplate  = "Hi! Mention me with a topic like '@%s python' to get a joke."
	helpTemplate   = "Hi! Mention me with a topic like '@%s python' to get a funny joke."
	noTopicReply   = "Please specify a topic after mentioning me."
	ackTemplate    = "Generating a joke about %s..."
	failedTemplate = "Sorry, I couldn't come up with a joke about %s right now."
)

// MessageService holds the bot's reactions to commands and mentions.
// It keeps no state between messages.
type MessageService struct {
	jokes     interfaces.JokeGenerator
	messenger interfaces.Messenger
	logger    *slog.Logger
}

func NewMessageService(jokes interfaces.JokeGenerator, messenger interfaces.Messenger, logger *slog.Logger) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{
		jokes:     jokes,
		messenger: messenger,
		logger:    logger,
	}
}

// Start answers /start.
func (s *MessageService) Start(ctx context.Context, msg entities.Message) error {
	return s.messenger.Reply(ctx, msg, fmt.Sprintf(startTemplate, msg.BotHandle))
}

// Help answers /help.
func (s *MessageService) Help(ctx context.Context, msg entities.Message) error {
	return s.messenger.Reply(ctx, msg, fmt.Sprintf(helpTemplate, msg.BotHandle))
}

// HandleMessage reacts to plain text. Messages that don't mention the bot are
// ignored; a mention with a topic gets an acknowledgement and then the joke.
func (s *MessageService) HandleMessage(ctx context.Context, msg entities.Message) error {
	mention := ParseMention(msg.Text, msg.BotHandle)

	switch mention.Kind {
	case entities.NotMentioned:
		return nil
	case entities.MentionWithoutTopic:
		return s.messenger.Reply(ctx, msg, noTopicReply)
	}

	return s.generateJoke(ctx, msg, mention.Topic)
}

func (s *MessageService) generateJoke(ctx context.Context, msg entities.Message, topic string) error {
	if err := s.messenger.Reply(ctx, msg, fmt.Sprintf(ackTemplate, topic)); err != nil {
		return fmt.Errorf("send acknowledgement: %w", err)
	}

	s.logger.Debug("generating joke", "chat_id", msg.ChatID, "topic", topic)
	joke, err := s.jokes.GenerateJoke(ctx, topic)
	if err != nil {
		if replyErr := s.messenger.Reply(ctx, msg, fmt.Sprintf(failedTemplate, topic)); replyErr != nil {
			s.logger.Warn("failed to report joke failure", "chat_id", msg.ChatID, "error", replyErr)
		}
		return fmt.Errorf("generate joke about %q: %w", topic, err)
	}

	if err := s.messenger.Reply(ctx, msg, joke); err != nil {
		return fmt.Errorf("send joke: %w", err)
	}
	return nil
}
