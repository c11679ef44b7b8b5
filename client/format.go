package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"talky/domain"
	"time"

	"github.com/gookit/color"
)

// ParseLine turns a typed line into an inbound message.
// "/w bob hi" whispers to bob, anything else is a chat.
func ParseLine(line string) (domain.Inbound, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.Inbound{}, false
	}
	if rest, ok := strings.CutPrefix(line, "/w "); ok {
		to, text, found := strings.Cut(strings.TrimSpace(rest), " ")
		if !found || strings.TrimSpace(text) == "" {
			return domain.Inbound{}, false
		}
		return domain.Inbound{Type: domain.PrivateChatType, To: to, Text: strings.TrimSpace(text)}, true
	}
	return domain.Inbound{Type: domain.ChatType, Text: line}, true
}

type frame struct {
	Type      domain.MessageType         `json:"type"`
	Username  string                     `json:"username"`
	From      string                     `json:"from"`
	To        string                     `json:"to"`
	Text      string                     `json:"text"`
	Timestamp int64                      `json:"timestamp"`
	Users     map[string]domain.Identity `json:"users"`
}

type Renderer struct {
	Colours bool
}

// Render formats one server frame for the terminal.
func (r Renderer) Render(payload []byte) string {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return r.paint(color.FgRed, "unreadable frame: "+string(payload))
	}

	at := time.UnixMilli(f.Timestamp).Format(time.TimeOnly)
	switch f.Type {
	case domain.ChatType:
		return fmt.Sprintf("[%s] %s: %s", at, r.paint(color.FgCyan, f.Username), f.Text)
	case domain.PrivateChatType:
		return r.paint(color.FgMagenta, fmt.Sprintf("[%s] %s -> %s: %s", at, f.From, f.To, f.Text))
	case domain.SummaryType:
		return r.paint(color.FgGreen, fmt.Sprintf("[%s] summary: %s", at, f.Text))
	case domain.ErrorType:
		return r.paint(color.FgRed, fmt.Sprintf("[%s] error: %s", at, f.Text))
	case domain.UsersType:
		names := make([]string, 0, len(f.Users))
		for _, u := range f.Users {
			names = append(names, u.Username)
		}
		sort.Strings(names)
		return r.paint(color.FgYellow, fmt.Sprintf("online (%d): %s", len(names), strings.Join(names, ", ")))
	default:
		return string(payload)
	}
}

func (r Renderer) paint(c color.Color, s string) string {
	if !r.Colours {
		return s
	}
	return c.Render(s)
}
