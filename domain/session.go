// Package domain contains core concepts of the chat system.
// This file defines sessions, identities and their lifecycle.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"talky/errors"

	"github.com/google/uuid"
)

// SessionID is the opaque handle of a live connection. It is never reused.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func (s SessionID) String() string { return string(s) }

// Status is an open key-value bag attached to a session (online, typing...).
// Routing never reads it.
type Status map[string]any

// Identity is the display name claimed by a client at connect time.
// Uniqueness is not enforced.
type Identity struct {
	Username string `json:"username"`
	State    Status `json:"state"`
}

func NewIdentity(username string) Identity {
	return Identity{Username: username, State: Status{}}
}

// Clone returns a copy whose State can be handed out without sharing the map.
func (i Identity) Clone() Identity {
	state := make(Status, len(i.State))
	for k, v := range i.State {
		state[k] = v
	}
	return Identity{Username: i.Username, State: state}
}

type SessionState int

const (
	Connecting SessionState = iota
	Active
	Closed
)

func (s SessionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Connecting -> Active -> Closed, Connecting -> Closed on a failed handshake.
func (s SessionState) CanTransition(next SessionState) bool {
	switch s {
	case Connecting:
		return next == Active || next == Closed
	case Active:
		return next == Closed
	default:
		return false
	}
}

// Transition returns next, or ErrInvalidTransition when the move is illegal.
func (s SessionState) Transition(next SessionState) (SessionState, error) {
	if !s.CanTransition(next) {
		return s, errors.ErrInvalidTransition
	}
	return next, nil
}
