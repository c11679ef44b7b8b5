// Package domain contains core concepts of the chat system.
// This file defines the inbound wire payload sent by clients.
package domain

import "strings"

type MessageType string

const (
	ChatType        MessageType = "chat"
	PrivateChatType MessageType = "private_chat"
	UsersType       MessageType = "users"
	SummaryType     MessageType = "summary"
	ErrorType       MessageType = "error"
)

// SummarizeCommand is the reserved text value that requests a summary.
const SummarizeCommand = "/summarize"

// Inbound is what a client sends. Username and Timestamp may be present
// but are never trusted: the server stamps both.
type Inbound struct {
	Type      MessageType `json:"type"`
	Text      string      `json:"text"`
	To        string      `json:"to,omitempty"`
	Username  string      `json:"username,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
}

func (m Inbound) IsSummarize() bool {
	return strings.TrimSpace(m.Text) == SummarizeCommand
}
