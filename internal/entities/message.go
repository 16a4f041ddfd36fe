package entities

// Message is a single inbound chat message, valid for one handler call.
type Message struct {
	ChatID    int64
	MessageID int
	From      string // sender username, may be empty
	Text      string
	BotHandle string // the bot's own username, without the leading "@"
	Command   string // set for commands, e.g. "start"
}

// MentionKind says how a message addressed the bot.
type MentionKind int

const (
	NotMentioned MentionKind = iota
	MentionWithoutTopic
	MentionWithTopic
)

func (k MentionKind) String() string {
	switch k {
	case NotMentioned:
		return "not_mentioned"
	case MentionWithoutTopic:
		return "mention_without_topic"
	case MentionWithTopic:
		return "mention_with_topic"
	}
	return "unknown"
}

// Mention is the result of parsing a message for the bot's handle.
type Mention struct {
	Kind  MentionKind
	Topic string // trimmed, set only for MentionWithTopic
}
