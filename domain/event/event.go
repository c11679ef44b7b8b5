// Package event defines what the server pushes to connected clients.
// Every event is encoded as one JSON document per frame.
package event

import (
	"talky/domain"
	"time"
)

type Event interface {
	Kind() domain.MessageType
}

type Chat struct {
	Type      domain.MessageType `json:"type"`
	Username  string             `json:"username"`
	Text      string             `json:"text"`
	Timestamp int64              `json:"timestamp"`
}

func NewChat(username, text string, at time.Time) Chat {
	return Chat{Type: domain.ChatType, Username: username, Text: text, Timestamp: at.UnixMilli()}
}

func (c Chat) Kind() domain.MessageType { return domain.ChatType }

type PrivateChat struct {
	Type      domain.MessageType `json:"type"`
	From      string             `json:"from"`
	To        string             `json:"to"`
	Text      string             `json:"text"`
	Timestamp int64              `json:"timestamp"`
}

func NewPrivateChat(from, to, text string, at time.Time) PrivateChat {
	return PrivateChat{Type: domain.PrivateChatType, From: from, To: to, Text: text, Timestamp: at.UnixMilli()}
}

func (p PrivateChat) Kind() domain.MessageType { return domain.PrivateChatType }

// Users is the full roster, keyed by session handle.
type Users struct {
	Type  domain.MessageType                   `json:"type"`
	Users map[domain.SessionID]domain.Identity `json:"users"`
}

func NewUsers(users map[domain.SessionID]domain.Identity) Users {
	if users == nil {
		users = make(map[domain.SessionID]domain.Identity)
	}
	return Users{Type: domain.UsersType, Users: users}
}

func (u Users) Kind() domain.MessageType { return domain.UsersType }

// Usernames lists the display names in the roster, duplicates included.
func (u Users) Usernames() []string {
	names := make([]string, 0, len(u.Users))
	for _, identity := range u.Users {
		names = append(names, identity.Username)
	}
	return names
}

type Summary struct {
	Type      domain.MessageType `json:"type"`
	Text      string             `json:"text"`
	Timestamp int64              `json:"timestamp"`
}

func NewSummary(text string, at time.Time) Summary {
	return Summary{Type: domain.SummaryType, Text: text, Timestamp: at.UnixMilli()}
}

func (s Summary) Kind() domain.MessageType { return domain.SummaryType }

// Error is only emitted when protocol errors are enabled.
type Error struct {
	Type      domain.MessageType `json:"type"`
	Text      string             `json:"text"`
	Timestamp int64              `json:"timestamp"`
}

func NewError(text string, at time.Time) Error {
	return Error{Type: domain.ErrorType, Text: text, Timestamp: at.UnixMilli()}
}

func (e Error) Kind() domain.MessageType { return domain.ErrorType }
