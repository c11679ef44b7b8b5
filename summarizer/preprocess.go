package summarizer

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

const (
	minMessageLength = 4
	minContentLength = 10
)

// Preprocess trims every message, drops the ones of 3 characters or fewer,
// collapses inner whitespace and joins the rest with newlines.
func Preprocess(messages []string) string {
	cleaned := lo.FilterMap(messages, func(msg string, _ int) (string, bool) {
		msg = strings.TrimSpace(msg)
		if utf8.RuneCountInString(msg) < minMessageLength {
			return "", false
		}
		return strings.Join(strings.Fields(msg), " "), true
	})
	return strings.Join(cleaned, "\n")
}

// WordBudget maps the input word count to a summary length in words.
func WordBudget(text string) int {
	switch n := len(strings.Fields(text)); {
	case n < 20:
		return 10
	case n < 50:
		return 25
	case n < 100:
		return 40
	default:
		return 60
	}
}
