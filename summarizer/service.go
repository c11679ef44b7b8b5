// Package summarizer is the reference summarization service the chat server
// calls on /summarize. It is extractive and keeps a Badger cache of results.
package summarizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"talky/repositories"
)

const (
	NoMessages    = "No messages to summarize."
	NotEnough     = "Not enough content to create a meaningful summary."
	TooRepetitive = "The content was too short or repetitive to summarize."
	failurePrefix = "Summarization failed. Error: "
)

type Service struct {
	log  *slog.Logger
	repo repositories.ISummaryRepository
}

func NewService(log *slog.Logger, repo repositories.ISummaryRepository) *Service {
	return &Service{log: log, repo: repo}
}

// Summarize always returns a human readable text, failures included.
func (s *Service) Summarize(messages []string) string {
	if len(messages) == 0 {
		return NoMessages
	}

	text := Preprocess(messages)
	if len(strings.TrimSpace(text)) < minContentLength {
		return NotEnough
	}

	hash := hashText(text)
	cached, found, err := s.repo.GetSummary(hash)
	if err != nil {
		s.log.Error("Summary cache lookup failed", "error", err)
		return Failure(err)
	}
	if found {
		return cached
	}

	budget := WordBudget(text)
	summary := strings.TrimSpace(Extract(text, budget))
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	if isWholeText(summary, text) {
		summary = TooRepetitive
	}

	if err := s.repo.StoreSummary(hash, summary); err != nil {
		s.log.Warn("Summary not cached", "hash", hash, "error", err)
	}
	s.log.Debug("Summary generated", "messages", len(messages), "budget", budget, "hash", hash)
	return summary
}

// isWholeText reports whether the summary kept every sentence of text.
func isWholeText(summary, text string) bool {
	normalize := func(s string) string { return strings.ToLower(strings.Join(strings.Fields(s), " ")) }
	return normalize(summary) == normalize(text)
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Failure formats an unexpected error the way the service reports it to callers.
func Failure(err error) string {
	return fmt.Sprintf("%s%v", failurePrefix, err)
}
