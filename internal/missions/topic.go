package missions

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTopicLength is the longest topic accepted, in characters.
const MaxTopicLength = 500

// NormalizeTopic returns the topic the way it is stored and sent to the
// language model:
//   - control characters are dropped
//   - runs of whitespace collapse into a single space
//   - leading and trailing whitespace is removed
//
// Empty topics and topics longer than MaxTopicLength characters are rejected.
func NormalizeTopic(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", errors.New("topic is not valid UTF-8")
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}

		return r
	}, raw)
	topic := strings.Join(strings.Fields(cleaned), " ")

	if topic == "" {
		return "", errors.New("topic is empty")
	}
	if n := utf8.RuneCountInString(topic); n > MaxTopicLength {
		return "", fmt.Errorf("topic is %d characters long, at most %d allowed", n, MaxTopicLength)
	}

	return topic, nil
}
