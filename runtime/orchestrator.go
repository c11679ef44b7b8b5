// Package runtime owns the connection-and-routing core: session registry,
// router, presence broadcaster, summarization bridge and session lifecycle.
// It contains no transport code.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"talky/contract"
	"talky/domain"
	"talky/domain/event"
	"talky/observability"
	"talky/runtime/workers"
	"time"
)

type Options struct {
	RollingLogSize   int
	SummaryWorkers   int
	SummaryQueueSize int
	SummaryTimeout   time.Duration
	HealthInterval   time.Duration
}

// Orchestrator is the lifecycle manager. Connect and Disconnect are the only
// registry mutations; each one is followed by a roster broadcast.
type Orchestrator struct {
	log        *slog.Logger
	opts       Options
	supervisor contract.ISupervisor
	registry   *Registry
	rollingLog *RollingLog
	fanout     *workers.EventFanout
	router     *Router
	presence   *PresenceBroadcaster
	bridge     *Bridge
	summarizer contract.Summarizer
	monitoring *observability.MonitoringManager
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry,
	summarizer contract.Summarizer, monitoring *observability.MonitoringManager, opts Options) *Orchestrator {
	rollingLog := NewRollingLog(opts.RollingLogSize)
	fanout := workers.NewEventFanout(log, registry, monitoring)
	bridge := NewBridge(log, rollingLog, opts.RollingLogSize, opts.SummaryQueueSize, fanout, monitoring)

	return &Orchestrator{
		log:        log,
		opts:       opts,
		supervisor: supervisor,
		registry:   registry,
		rollingLog: rollingLog,
		fanout:     fanout,
		router:     NewRouter(log, registry, fanout, rollingLog, bridge, monitoring),
		presence:   NewPresenceBroadcaster(log, registry, fanout, monitoring),
		bridge:     bridge,
		summarizer: summarizer,
		monitoring: monitoring,
	}
}

// WithCensor turns on chat moderation.
func (o *Orchestrator) WithCensor(censor Censor) *Orchestrator {
	o.router.WithCensor(censor)
	return o
}

// Connect registers a new session for username and broadcasts the roster.
// Empty and duplicate usernames are accepted.
func (o *Orchestrator) Connect(ctx context.Context, username string, sink contract.EventSink) (domain.SessionID, error) {
	id := domain.NewSessionID()
	if err := o.registry.Register(id, domain.NewIdentity(username), sink); err != nil {
		return "", fmt.Errorf("register session %s: %w", id, err)
	}
	o.log.Info("Session connected", "session_id", id, "username", username)
	o.presence.BroadcastPresence(ctx)
	return id, nil
}

// Disconnect removes the session and broadcasts the roster.
// A second call for the same handle is a no-op.
func (o *Orchestrator) Disconnect(ctx context.Context, id domain.SessionID) {
	identity, _ := o.registry.Identity(id)
	if !o.registry.Remove(id) {
		return
	}
	o.log.Info("Session disconnected", "session_id", id, "username", identity.Username)
	o.presence.BroadcastPresence(ctx)
}

// HandleMessage hands one inbound frame to the router.
func (o *Orchestrator) HandleMessage(ctx context.Context, id domain.SessionID, payload []byte) error {
	return o.router.Route(ctx, id, payload)
}

// Deliver sends a server event to one session.
func (o *Orchestrator) Deliver(ctx context.Context, id domain.SessionID, e event.Event) error {
	return o.router.Deliver(ctx, id, e)
}

func (o *Orchestrator) Sessions() int {
	return o.registry.Len()
}

func (o *Orchestrator) Stats() observability.ChatStats {
	return o.monitoring.GetLatest(o.registry.Len())
}

// Start launches the supervised workers and returns immediately.
func (o *Orchestrator) Start(ctx context.Context) {
	for i := 0; i < o.opts.SummaryWorkers; i++ {
		o.supervisor.Add(workers.NewSummaryWorker(o.log, o.summarizer, o.fanout,
			o.bridge.Requests(), o.opts.SummaryTimeout, o.monitoring))
	}
	if o.opts.HealthInterval > 0 {
		o.supervisor.Add(
			workers.NewHealthWorker(o.log, o.opts.HealthInterval, o.registry, o.monitoring),
			workers.NewChannelCapacityWorker(o.log, []workers.NamedChannel{
				{Name: "summary_requests", Channel: o.bridge.Requests()},
			}, o.opts.HealthInterval),
		)
	}

	o.log.Info("Starting orchestrator and all supervised workers", "summary_workers", o.opts.SummaryWorkers)
	go o.supervisor.Run(ctx)
}

func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
