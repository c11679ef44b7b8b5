package runtime

import (
	"context"
	"log/slog"
	"talky/contract"
	"talky/domain"
	"talky/domain/event"
	"talky/errors"
	"talky/observability"
	"time"
)

// Bridge captures the recent conversation window and queues it for the
// summary workers. Request never waits for the summarizer.
type Bridge struct {
	log        *slog.Logger
	rollingLog *RollingLog
	window     int
	requests   chan domain.SummaryRequest
	deliverer  contract.Deliverer
	monitoring *observability.MonitoringManager
}

func NewBridge(log *slog.Logger, rollingLog *RollingLog, window, queueSize int,
	deliverer contract.Deliverer, monitoring *observability.MonitoringManager) *Bridge {
	return &Bridge{
		log:        log,
		rollingLog: rollingLog,
		window:     window,
		requests:   make(chan domain.SummaryRequest, queueSize),
		deliverer:  deliverer,
		monitoring: monitoring,
	}
}

// Request enqueues a summary for requester. With a full queue the requester
// immediately gets the fallback summary and ErrSummaryQueueFull is returned.
func (b *Bridge) Request(ctx context.Context, requester domain.SessionID) error {
	b.monitoring.IncrSummariesRequested()
	req := domain.SummaryRequest{
		Requester:   requester,
		Messages:    b.rollingLog.Last(b.window),
		RequestedAt: time.Now().UTC(),
	}

	select {
	case b.requests <- req:
		return nil
	default:
	}

	b.monitoring.IncrSummariesFailed()
	b.log.Warn("Summary queue full, sending fallback", "session_id", requester)
	if err := b.deliverer.Deliver(ctx, requester, event.NewSummary(domain.FallbackSummary, time.Now().UTC())); err != nil {
		b.log.Debug("Fallback summary not delivered", "session_id", requester, "error", err)
	}
	return errors.ErrSummaryQueueFull
}

// Requests is consumed by the summary workers.
func (b *Bridge) Requests() <-chan domain.SummaryRequest {
	return b.requests
}
