package usecases

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"binary_joke_bot/internal/entities"
)

// MentionSigil prefixes a username to address that participant.
const MentionSigil = "@"

// ParseMention looks for "@handle" followed by whitespace and returns the rest
// of the text, trimmed, as the topic. Only the first such occurrence counts and
// the topic runs to the end of the text, across lines.
func ParseMention(text, handle string) entities.Mention {
	marker := MentionSigil + handle
	if handle == "" || !strings.Contains(text, marker) {
		return entities.Mention{Kind: entities.NotMentioned}
	}

	rest := text
	for {
		i := strings.Index(rest, marker)
		if i < 0 {
			return entities.Mention{Kind: entities.MentionWithoutTopic}
		}
		rest = rest[i+len(marker):]

		r, _ := utf8.DecodeRuneInString(rest)
		if rest == "" || !unicode.IsSpace(r) {
			continue
		}

		topic := strings.TrimSpace(rest)
		if topic == "" {
			return entities.Mention{Kind: entities.MentionWithoutTopic}
		}
		return entities.Mention{Kind: entities.MentionWithTopic, Topic: topic}
	}
}
