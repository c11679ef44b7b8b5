package workers

import (
	"context"
	goerrors "errors"
	"log/slog"
	"talky/contract"
	"talky/domain"
	"talky/domain/event"
	"talky/errors"
	"talky/observability"
	"time"
)

// SummaryWorker calls the external summarizer for queued requests and posts
// the result back to the requester only. Several workers share one queue.
type SummaryWorker struct {
	log        *slog.Logger
	summarizer contract.Summarizer
	deliverer  contract.Deliverer
	requests   <-chan domain.SummaryRequest
	timeout    time.Duration
	monitoring *observability.MonitoringManager
}

func NewSummaryWorker(log *slog.Logger, summarizer contract.Summarizer, deliverer contract.Deliverer,
	requests <-chan domain.SummaryRequest, timeout time.Duration,
	monitoring *observability.MonitoringManager) *SummaryWorker {
	return &SummaryWorker{
		log:        log,
		summarizer: summarizer,
		deliverer:  deliverer,
		requests:   requests,
		timeout:    timeout,
		monitoring: monitoring,
	}
}

func (w *SummaryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping summary worker")
			return ctx.Err()
		case req, ok := <-w.requests:
			if !ok {
				w.log.Debug("Summary queue is closed")
				return nil
			}
			w.Handle(ctx, req)
		}
	}
}

// Handle never propagates a summarizer failure: the fallback text is delivered instead.
func (w *SummaryWorker) Handle(ctx context.Context, req domain.SummaryRequest) {
	text := w.summarize(ctx, req)

	err := w.deliverer.Deliver(ctx, req.Requester, event.NewSummary(text, time.Now().UTC()))
	switch {
	case err == nil:
		w.log.Debug("Summary delivered", "session_id", req.Requester,
			"messages", len(req.Messages), "lead_time_ms", time.Since(req.RequestedAt).Milliseconds())
	case goerrors.Is(err, errors.ErrUnknownSession):
		w.log.Debug("Requester left before the summary was ready", "session_id", req.Requester)
	default:
		w.log.Warn("Failed to deliver summary", "session_id", req.Requester, "error", err)
	}
}

func (w *SummaryWorker) summarize(ctx context.Context, req domain.SummaryRequest) string {
	callCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	summary, err := w.summarizer.Summarize(callCtx, req.Messages)
	if err != nil {
		w.monitoring.IncrSummariesFailed()
		w.log.Warn("Summarizer failed, sending fallback", "session_id", req.Requester, "error", err)
		return domain.FallbackSummary
	}
	return summary
}
