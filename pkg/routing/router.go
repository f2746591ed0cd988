// Package routing resolves inbound replies to live agent sessions and
// relays them. Resolution runs a tiered cascade: explicit tag match,
// semantic classification, then recency fallbacks, with a liveness recheck
// before anything is typed into a pane.
package routing

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"harold/pkg/store"
)

// tagPattern matches an explicit routing tag at the start of a reply.
var tagPattern = regexp.MustCompile(`(?s)^\s*\[([^\]]+)\]\s*(.*)$`)

// ParseTag splits "[tag] body" into its parts. Without a leading tag the
// whole text is the body.
func ParseTag(text string) (tag string, hasTag bool, body string) {
	m := tagPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false, text
	}
	return m[1], true, m[2]
}

// Messenger delivers error and confirmation texts back to the human.
type Messenger interface {
	Send(ctx context.Context, text string) error
}

// Router drives the inbound routing pipeline.
type Router struct {
	Dir        Directory
	State      *State
	Classifier Classifier
	Messenger  Messenger
	Store      *store.Store

	// MyAgentMarker is the label substring of the tier-6 fallback pane.
	MyAgentMarker string
}

// NewRouter wires a Router with the default fallback marker.
func NewRouter(dir Directory, state *State, cls Classifier, msg Messenger, st *store.Store) *Router {
	return &Router{
		Dir:           dir,
		State:         state,
		Classifier:    cls,
		Messenger:     msg,
		Store:         st,
		MyAgentMarker: "my-agent",
	}
}

// RouteReply resolves and relays one received reply. It never returns an
// error: every failure mode ends in a user-visible message and a
// ReplyRouted event.
func (r *Router) RouteReply(ctx context.Context, traceID, text string) {
	log := slog.With("trace_id", traceID)
	log.Info("routing reply", "text", text)

	tag, hasTag, body := ParseTag(text)
	panes := r.Dir.Discover(ctx)

	if len(panes) == 0 {
		log.Info("no live agents")
		r.sendMessage(ctx, log, "No active agent sessions found.")
		r.record(ctx, log, traceID, text, "", store.OutcomeNoRoute)
		return
	}

	agent, cleaned, ok := r.resolve(ctx, log, tag, hasTag, body, panes)
	if !ok {
		available := labels(panes, nil)
		msg := fmt.Sprintf("No active pane found. Available: %s", available)
		if hasTag {
			msg = fmt.Sprintf("No pane matching '%s'. Available: %s", tag, available)
		}
		r.sendMessage(ctx, log, msg)
		r.record(ctx, log, traceID, text, "", store.OutcomeNoRoute)
		return
	}

	if !agent.IsAlive(ctx) {
		log.Info("resolved pane went stale", "label", agent.Label())
		r.sendMessage(ctx, log, fmt.Sprintf(
			"Pane %s is no longer active. Available: %s", agent.Label(), labels(panes, agent)))
		r.record(ctx, log, traceID, text, agent.Label(), store.OutcomeDeadPane)
		return
	}

	payload := "📱 " + StripControl(cleaned)
	if err := agent.Relay(ctx, payload); err != nil {
		log.Warn("relay failed", "label", agent.Label(), "error", err)
		r.sendMessage(ctx, log, fmt.Sprintf(
			"Pane %s is no longer active. Available: %s", agent.Label(), labels(panes, agent)))
		r.record(ctx, log, traceID, text, agent.Label(), store.OutcomeDeadPane)
		return
	}
	r.State.SetLastRouted(agent)
	r.sendMessage(ctx, log, fmt.Sprintf("✓ Delivered to [%s]", agent.Label()))
	r.record(ctx, log, traceID, text, agent.Label(), store.OutcomeDelivered)
	log.Info("reply delivered", "label", agent.Label())
}

// resolve runs the tier cascade. A present tag that matches nothing is
// terminal: it never falls through to the recency tiers.
func (r *Router) resolve(ctx context.Context, log *slog.Logger, tag string, hasTag bool, body string, panes []AgentAddress) (AgentAddress, string, bool) {
	if hasTag {
		for _, p := range panes {
			if strings.EqualFold(p.Label(), tag) {
				log.Info("resolved via exact tag match", "label", p.Label())
				return p, body, true
			}
		}
		tagLC := strings.ToLower(tag)
		for _, p := range panes {
			if strings.Contains(strings.ToLower(p.Label()), tagLC) {
				log.Info("resolved via tag substring match", "label", p.Label())
				return p, body, true
			}
		}
		log.Info("no pane matched tag", "tag", tag)
		return nil, "", false
	}

	if len(panes) >= 2 && r.Classifier != nil {
		label, cleaned, err := r.Classifier.Classify(ctx, body, labelList(panes))
		if err != nil {
			log.Warn("semantic resolve failed", "error", err)
		} else if label != "" {
			for _, p := range panes {
				if p.Label() == label {
					log.Info("resolved via semantic match", "label", label)
					return p, cleaned, true
				}
			}
		} else {
			log.Info("semantic resolve returned none")
		}
	}

	if last := r.State.LastRouted(); last != nil {
		for _, p := range panes {
			if p.SameTarget(last) {
				log.Info("resolved via last routed agent", "label", p.Label())
				return p, body, true
			}
		}
		log.Info("last routed agent no longer live", "label", last.Label())
	}

	if last := r.State.LastAwaySource(); last != nil {
		for _, p := range panes {
			if p.SameTarget(last) {
				log.Info("resolved via last notification source", "label", p.Label())
				return p, body, true
			}
		}
		log.Info("last notification source no longer live", "label", last.Label())
	}

	for _, p := range panes {
		if strings.Contains(strings.ToLower(p.Label()), r.MyAgentMarker) {
			log.Info("resolved via fallback marker", "label", p.Label())
			return p, body, true
		}
	}

	log.Info("resolution failed")
	return nil, "", false
}

func (r *Router) sendMessage(ctx context.Context, log *slog.Logger, text string) {
	if r.Messenger == nil {
		return
	}
	if err := r.Messenger.Send(ctx, text); err != nil {
		log.Warn("messenger send failed", "error", err)
	}
}

// record appends a ReplyRouted event; failures are logged, never raised.
func (r *Router) record(ctx context.Context, log *slog.Logger, traceID, source, resolved, outcome string) {
	if r.Store == nil {
		return
	}
	_, err := r.Store.Append(ctx, store.StreamID, store.TypeReplyRouted, traceID, store.ReplyRouted{
		SourceText:    source,
		ResolvedAgent: resolved,
		Outcome:       outcome,
	})
	if err != nil {
		log.Warn("append ReplyRouted failed", "error", err)
	}
}

func labelList(panes []AgentAddress) []string {
	out := make([]string, 0, len(panes))
	for _, p := range panes {
		out = append(out, p.Label())
	}
	return out
}

// labels joins pane labels for a user-facing message, excluding one agent.
func labels(panes []AgentAddress, except AgentAddress) string {
	var out []string
	for _, p := range panes {
		if except != nil && p.SameTarget(except) {
			continue
		}
		out = append(out, p.Label())
	}
	return strings.Join(out, ", ")
}
