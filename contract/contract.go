//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"talky/domain"
	"talky/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the send side of one session.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

type IRegistry interface {
	Register(id domain.SessionID, identity domain.Identity, sink EventSink) error
	Remove(id domain.SessionID) bool
	LookupByUsername(username string) (domain.SessionID, bool)
	Identity(id domain.SessionID) (domain.Identity, bool)
	Sink(id domain.SessionID) (EventSink, bool)
	Sinks() map[domain.SessionID]EventSink
	Snapshot() map[domain.SessionID]domain.Identity
	Len() int
}

// Deliverer pushes one event to one live session.
type Deliverer interface {
	Deliver(ctx context.Context, id domain.SessionID, e event.Event) error
}

// Summarizer is the external summarization collaborator.
type Summarizer interface {
	Summarize(ctx context.Context, messages []string) (string, error)
}
