package domain

import "time"

// FallbackSummary is sent whenever the summarizer cannot produce a result.
const FallbackSummary = "Failed to generate summary"

// SummaryRequest captures the conversation window at the time of the request.
type SummaryRequest struct {
	Requester   SessionID
	Messages    []string
	RequestedAt time.Time
}
