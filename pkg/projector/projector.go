// Package projector tails the event store and drives the two side-effectful
// pipelines: TurnCompleted events feed the notifier, ReplyReceived events
// feed the router. Handlers are best-effort; nothing they do can stop the
// loop.
package projector

import (
	"context"
	"encoding/json"
	"log/slog"

	"harold/pkg/store"
)

// Name identifies this consumer's offset in the store's projection table.
const Name = "harold.projector"

// Notifier handles completed turns.
type Notifier interface {
	Notify(ctx context.Context, traceID string, turn store.TurnCompleted)
}

// Router handles received replies.
type Router interface {
	RouteReply(ctx context.Context, traceID, text string)
}

// Projector owns the dispatch loop and, transitively, the routing state the
// pipelines share.
type Projector struct {
	Store    *store.Store
	Notifier Notifier
	Router   Router
}

// Run dispatches events in order until ctx is cancelled. The offset is
// recorded only after a handler returns, so a crash re-delivers the event in
// flight (at-least-once).
func (p *Projector) Run(ctx context.Context) {
	lastSeen, err := p.Store.ProjectionSeq(ctx, Name)
	if err != nil {
		slog.Error("projector offset load failed", "error", err)
		return
	}
	slog.Info("projector starting", "from_seq", lastSeen)

	for ev := range p.Store.Subscribe(ctx, store.StreamID, lastSeen) {
		p.dispatch(ctx, ev)
		if err := p.Store.SetProjectionSeq(ctx, Name, ev.Seq); err != nil {
			slog.Warn("projector offset save failed", "seq", ev.Seq, "error", err)
		}
	}
	slog.Info("projector shutting down")
}

// dispatch routes one event to its handler. A panicking handler is contained
// and logged; the projector keeps consuming.
func (p *Projector) dispatch(ctx context.Context, ev store.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "type", ev.Type, "seq", ev.Seq, "panic", r)
		}
	}()

	switch ev.Type {
	case store.TypeTurnCompleted:
		var turn store.TurnCompleted
		if err := json.Unmarshal(ev.Payload, &turn); err != nil {
			slog.Warn("bad TurnCompleted payload", "seq", ev.Seq, "error", err)
			return
		}
		slog.Info("projector: turn completed",
			"trace_id", ev.TraceID, "pane_label", turn.PaneLabel, "main_context", turn.MainContext)
		p.Notifier.Notify(ctx, ev.TraceID, turn)
	case store.TypeReplyReceived:
		var reply store.ReplyReceived
		if err := json.Unmarshal(ev.Payload, &reply); err != nil {
			slog.Warn("bad ReplyReceived payload", "seq", ev.Seq, "error", err)
			return
		}
		slog.Info("projector: reply received", "trace_id", ev.TraceID, "direction", reply.Direction)
		p.Router.RouteReply(ctx, ev.TraceID, reply.Text)
	case store.TypeNotificationSent, store.TypeReplyRouted:
		// Observability records; nothing to drive.
	default:
		slog.Warn("projector: unknown event type", "type", ev.Type, "seq", ev.Seq)
	}
}
