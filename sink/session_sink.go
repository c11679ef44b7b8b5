package sink

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"talky/domain/event"
	"talky/errors"
	"time"
)

// SessionSink is the send side of one websocket session.
// Producers call Consume; the connection writer drains Events.
// The events channel is never closed: Done tells the writer to stop.
type SessionSink struct {
	log             *slog.Logger
	events          chan event.Event
	done            chan struct{}
	once            sync.Once
	deliveryTimeout time.Duration
	lagging         atomic.Bool
}

func NewSessionSink(log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *SessionSink {
	return &SessionSink{
		log:             log,
		events:          make(chan event.Event, bufferSize),
		done:            make(chan struct{}),
		deliveryTimeout: deliveryTimeout,
	}
}

// Consume is called by the router and the presence broadcaster.
// It waits at most deliveryTimeout for room in the buffer, then drops the event.
// Once a wait has timed out the sink is lagging: full-buffer events are dropped
// at once until the writer frees a slot again.
func (s *SessionSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case <-s.done:
		return errors.ErrSinkClosed
	default:
	}

	select {
	case s.events <- e:
		s.lagging.Store(false)
		return nil
	default:
	}

	if s.lagging.Load() {
		s.log.Debug("Session lagging, dropping event", "type", e.Kind())
		return errors.ErrSinkFull
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()

	select {
	case s.events <- e:
		return nil
	case <-s.done:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		s.lagging.Store(true)
		s.log.Debug("Session buffer full, dropping event", "type", e.Kind())
		return errors.ErrSinkFull
	}
}

func (s *SessionSink) Events() <-chan event.Event { return s.events }

func (s *SessionSink) Done() <-chan struct{} { return s.done }

// Close is idempotent.
func (s *SessionSink) Close() {
	s.once.Do(func() { close(s.done) })
}
