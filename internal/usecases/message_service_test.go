package usecases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"binary_joke_bot/internal/entities"
)

type fakeMessenger struct {
	mu      sync.Mutex
	replies []string
	failOn  int // 1-based reply index that fails, 0 never
}

func (f *fakeMessenger) Reply(_ context.Context, _ entities.Message, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, text)
	if f.failOn == len(f.replies) {
		return errors.New("telegram down")
	}
	return nil
}

type fakeJokes struct {
	topics []string
	joke   string
	err    error
}

func (f *fakeJokes) GenerateJoke(_ context.Context, topic string) (string, error) {
	f.topics = append(f.topics, topic)
	return f.joke, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(jokes *fakeJokes) (*MessageService, *fakeMessenger) {
	m := &fakeMessenger{}
	return NewMessageService(jokes, m, testLogger()), m
}

func message(text string) entities.Message {
	return entities.Message{ChatID: 42, MessageID: 7, Text: text, BotHandle: testHandle}
}

func TestHandleMessageWithTopic(t *testing.T) {
	jokes := &fakeJokes{joke: "Why do cats sit on keyboards? To keep an eye on the mouse."}
	svc, m := newTestService(jokes)

	if err := svc.HandleMessage(context.Background(), message("@Binary_Joke_Bot cats")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	want := []string{"Generating a joke about cats...", jokes.joke}
	if len(m.replies) != len(want) {
		t.Fatalf("replies = %q, want %q", m.replies, want)
	}
	for i := range want {
		if m.replies[i] != want[i] {
			t.Errorf("reply[%d] = %q, want %q", i, m.replies[i], want[i])
		}
	}
	if len(jokes.topics) != 1 || jokes.topics[0] != "cats" {
		t.Errorf("provider topics = %q, want [cats]", jokes.topics)
	}
}

func TestHandleMessageWithoutTopic(t *testing.T) {
	jokes := &fakeJokes{joke: "unused"}
	svc, m := newTestService(jokes)

	if err := svc.HandleMessage(context.Background(), message("@Binary_Joke_Bot   ")); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if len(m.replies) != 1 || m.replies[0] != "Please specify a topic after mentioning me." {
		t.Errorf("replies = %q", m.replies)
	}
	if len(jokes.topics) != 0 {
		t.Errorf("provider called with %q", jokes.topics)
	}
}

func TestHandleMessageNotMentioned(t *testing.T) {
	jokes := &fakeJokes{joke: "unused"}
	svc, m := newTestService(jokes)

	for _, text := range []string{"hello everyone", "", "@someone_else cats"} {
		if err := svc.HandleMessage(context.Background(), message(text)); err != nil {
			t.Fatalf("HandleMessage(%q): %v", text, err)
		}
	}

	if len(m.replies) != 0 {
		t.Errorf("replies = %q, want none", m.replies)
	}
	if len(jokes.topics) != 0 {
		t.Errorf("provider called with %q", jokes.topics)
	}
}

func TestHandleMessageProviderFailure(t *testing.T) {
	providerErr := errors.New("401 invalid api key")
	jokes := &fakeJokes{err: providerErr}
	svc, m := newTestService(jokes)

	err := svc.HandleMessage(context.Background(), message("@Binary_Joke_Bot cats"))
	if !errors.Is(err, providerErr) {
		t.Fatalf("err = %v, want provider error", err)
	}

	if len(m.replies) != 2 {
		t.Fatalf("replies = %q, want acknowledgement and failure notice", m.replies)
	}
	if m.replies[0] != "Generating a joke about cats..." {
		t.Errorf("reply[0] = %q", m.replies[0])
	}
	if !strings.Contains(m.replies[1], "cats") || !strings.HasPrefix(m.replies[1], "Sorry") {
		t.Errorf("reply[1] = %q", m.replies[1])
	}
}

func TestHandleMessageAcknowledgementFails(t *testing.T) {
	jokes := &fakeJokes{joke: "unused"}
	m := &fakeMessenger{failOn: 1}
	svc := NewMessageService(jokes, m, testLogger())

	if err := svc.HandleMessage(context.Background(), message("@Binary_Joke_Bot cats")); err == nil {
		t.Fatal("expected error when acknowledgement cannot be sent")
	}
	if len(jokes.topics) != 0 {
		t.Errorf("provider called with %q after failed acknowledgement", jokes.topics)
	}
}

func TestStartAndHelp(t *testing.T) {
	svc, m := newTestService(&fakeJokes{})
	ctx := context.Background()

	if err := svc.Start(ctx, message("/start")); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Help(ctx, message("/help")); err != nil {
		t.Fatalf("Help: %v", err)
	}

	if len(m.replies) != 2 {
		t.Fatalf("replies = %q, want one per command", m.replies)
	}
	start, help := m.replies[0], m.replies[1]
	if start != "Hi! Mention me with a topic like '@Binary_Joke_Bot python' to get a joke." {
		t.Errorf("start = %q", start)
	}
	if help != "Hi! Mention me with a topic like '@Binary_Joke_Bot python' to get a funny joke." {
		t.Errorf("help = %q", help)
	}
	if start == help {
		t.Error("start and help should differ in wording")
	}
}
