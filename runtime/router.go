package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"talky/contract"
	"talky/domain"
	"talky/domain/event"
	"talky/errors"
	"talky/observability"
	"time"
)

// Censor rewrites text before it is delivered. The moderation package provides one.
type Censor interface {
	Censor(original string) (string, []string)
}

// Broadcaster is the delivery half used by the router and the presence broadcaster.
type Broadcaster interface {
	contract.Deliverer
	Broadcast(ctx context.Context, e event.Event) int
}

// Router classifies inbound payloads and dispatches them.
// Sender identity and timestamps always come from the server.
type Router struct {
	log        *slog.Logger
	registry   contract.IRegistry
	fanout     Broadcaster
	rollingLog *RollingLog
	bridge     *Bridge
	censor     Censor
	monitoring *observability.MonitoringManager
	now        func() time.Time
}

func NewRouter(log *slog.Logger, registry contract.IRegistry, fanout Broadcaster,
	rollingLog *RollingLog, bridge *Bridge, monitoring *observability.MonitoringManager) *Router {
	return &Router{
		log:        log,
		registry:   registry,
		fanout:     fanout,
		rollingLog: rollingLog,
		bridge:     bridge,
		monitoring: monitoring,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithCensor enables moderation of chat and private texts.
func (r *Router) WithCensor(censor Censor) *Router {
	r.censor = censor
	return r
}

// Route handles one inbound frame from origin. A non-nil error explains why
// the message was dropped; the connection stays open either way.
func (r *Router) Route(ctx context.Context, origin domain.SessionID, payload []byte) error {
	var msg domain.Inbound
	if err := json.Unmarshal(payload, &msg); err != nil {
		r.monitoring.IncrMalformedPayloads()
		return fmt.Errorf("%w: %v", errors.ErrMalformedPayload, err)
	}

	sender, ok := r.registry.Identity(origin)
	if !ok {
		return errors.ErrUnknownSession
	}

	switch msg.Type {
	case domain.ChatType, domain.PrivateChatType:
		if msg.IsSummarize() {
			return r.bridge.Request(ctx, origin)
		}
	}

	switch msg.Type {
	case domain.ChatType:
		r.routeChat(ctx, sender, msg)
		return nil
	case domain.PrivateChatType:
		return r.routePrivate(ctx, origin, sender, msg)
	default:
		r.monitoring.IncrMalformedPayloads()
		return fmt.Errorf("%w: %q", errors.ErrUnknownMessageType, msg.Type)
	}
}

// routeChat echoes back to the sender too.
func (r *Router) routeChat(ctx context.Context, sender domain.Identity, msg domain.Inbound) {
	text := r.moderate(msg.Text)
	r.rollingLog.Append(text)

	delivered := r.fanout.Broadcast(ctx, event.NewChat(sender.Username, text, r.now()))
	r.monitoring.IncrBroadcasts()
	r.log.Debug("Chat broadcast", "username", sender.Username, "recipients", delivered)
}

// routePrivate delivers to the first session holding msg.To. The sender gets
// no server copy and no error when the recipient is unknown.
func (r *Router) routePrivate(ctx context.Context, origin domain.SessionID, sender domain.Identity, msg domain.Inbound) error {
	target, ok := r.registry.LookupByUsername(msg.To)
	if !ok {
		r.monitoring.IncrPrivateDropped()
		r.log.Warn("Recipient not found for private message", "from", sender.Username, "to", msg.To)
		return fmt.Errorf("%w: %q", errors.ErrRecipientNotFound, msg.To)
	}

	evt := event.NewPrivateChat(sender.Username, msg.To, r.moderate(msg.Text), r.now())
	if err := r.fanout.Deliver(ctx, target, evt); err != nil {
		r.monitoring.IncrPrivateDropped()
		r.log.Debug("Private message dropped", "session_id", origin, "to", msg.To, "error", err)
		return err
	}
	r.monitoring.IncrPrivateDelivered()
	r.log.Debug("Private message delivered", "from", sender.Username, "to", msg.To)
	return nil
}

// Deliver posts an event to one live session; used for protocol errors.
func (r *Router) Deliver(ctx context.Context, id domain.SessionID, e event.Event) error {
	return r.fanout.Deliver(ctx, id, e)
}

func (r *Router) moderate(text string) string {
	if r.censor == nil {
		return text
	}
	censored, words := r.censor.Censor(text)
	if len(words) > 0 {
		r.log.Debug("Message censored", "words", len(words))
	}
	return censored
}
