package workers

import (
	"context"
	"log/slog"
	"talky/contract"
	"talky/domain"
	"talky/domain/event"
	"talky/errors"
	"talky/observability"
)

// EventFanout delivers events to the sinks of registered sessions.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. A session added while a fan-out is running may
// or may not receive the event.
//
// Sinks are fed one after the other from the calling goroutine so that
// events sent by one connection keep their order in every sink.
type EventFanout struct {
	log        *slog.Logger
	registry   contract.IRegistry
	monitoring *observability.MonitoringManager
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	monitoring *observability.MonitoringManager) *EventFanout {
	return &EventFanout{log: log, registry: registry, monitoring: monitoring}
}

// Broadcast sends e to every session currently registered and returns
// how many sinks accepted it.
func (f *EventFanout) Broadcast(ctx context.Context, e event.Event) int {
	delivered := 0
	for id, sink := range f.registry.Sinks() {
		if err := sink.Consume(ctx, e); err != nil {
			f.monitoring.IncrDroppedDeliveries()
			f.log.Debug("Delivery dropped", "session_id", id, "type", e.Kind(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Deliver sends e to one session. ErrUnknownSession means it is gone.
func (f *EventFanout) Deliver(ctx context.Context, id domain.SessionID, e event.Event) error {
	sink, ok := f.registry.Sink(id)
	if !ok {
		return errors.ErrUnknownSession
	}
	if err := sink.Consume(ctx, e); err != nil {
		f.monitoring.IncrDroppedDeliveries()
		return err
	}
	return nil
}
