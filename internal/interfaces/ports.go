package interfaces

import (
	"context"

	"binary_joke_bot/internal/entities"
)

// JokeGenerator produces one joke for a topic.
type JokeGenerator interface {
	GenerateJoke(ctx context.Context, topic string) (string, error)
}

// Messenger replies to an inbound message in the same chat.
type Messenger interface {
	Reply(ctx context.Context, to entities.Message, text string) error
}

// HandlerFunc reacts to one inbound message.
type HandlerFunc func(ctx context.Context, msg entities.Message) error
