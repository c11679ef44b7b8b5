package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	ErrMalformedPayload         = fmt.Errorf("malformed payload")
	ErrUnknownMessageType       = fmt.Errorf("unknown message type")
	ErrRecipientNotFound        = fmt.Errorf("recipient not found")
	ErrUnknownSession           = fmt.Errorf("unknown session")
	ErrSessionAlreadyRegistered = fmt.Errorf("session already registered")
	ErrInvalidTransition        = fmt.Errorf("invalid session state transition")

	ErrSinkFull   = fmt.Errorf("sink buffer is full")
	ErrSinkClosed = fmt.Errorf("sink is closed")

	ErrSummaryQueueFull = fmt.Errorf("summary queue is full")
	ErrSummarizerStatus = fmt.Errorf("summarizer returned a non-success status")
	ErrMalformedSummary = fmt.Errorf("summarizer returned a malformed response")
)
