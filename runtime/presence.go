package runtime

import (
	"context"
	"log/slog"
	"sync"
	"talky/contract"
	"talky/domain/event"
	"talky/observability"
)

// PresenceBroadcaster pushes the full roster to every session.
// Broadcasts are serialized so that a later membership change is always
// delivered after an earlier one: every client converges to the real roster.
type PresenceBroadcaster struct {
	mu         sync.Mutex
	log        *slog.Logger
	registry   contract.IRegistry
	fanout     Broadcaster
	monitoring *observability.MonitoringManager
}

func NewPresenceBroadcaster(log *slog.Logger, registry contract.IRegistry, fanout Broadcaster,
	monitoring *observability.MonitoringManager) *PresenceBroadcaster {
	return &PresenceBroadcaster{log: log, registry: registry, fanout: fanout, monitoring: monitoring}
}

func (p *PresenceBroadcaster) BroadcastPresence(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	users := event.NewUsers(p.registry.Snapshot())
	delivered := p.fanout.Broadcast(ctx, users)
	p.monitoring.IncrPresenceUpdates()
	p.log.Debug("Roster broadcast", "users", len(users.Users), "recipients", delivered)
}
