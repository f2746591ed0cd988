// Package notify drives the outbound notification pipeline: when an agent
// turn completes, either speak a short summary at the desk or text the
// assistant's message to the user's phone, depending on the screen-lock
// state.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"harold/pkg/chatdb"
	"harold/pkg/execx"
	"harold/pkg/routing"
	"harold/pkg/settings"
	"harold/pkg/store"
)

// outboundPrefix marks every iMessage Harold sends; the listener uses it to
// ignore Harold's own messages, and dedup strips it before comparing.
const outboundPrefix = "🤖 "

// Notifier selects and drives one of the two notification paths.
type Notifier struct {
	Imessage   settings.ImessageSettings
	TTS        settings.TTSSettings
	SkipActive bool

	Summarizer *Summarizer
	Messenger  *IMessenger
	Tmux       *routing.Tmux
	State      *routing.State
	Store      *store.Store
	Chat       *chatdb.DB
	Runner     execx.Runner

	// LockProbe defaults to the ioreg scan; tests and diagnostics inject
	// their own.
	LockProbe func(ctx context.Context) bool
}

func (n *Notifier) locked(ctx context.Context) bool {
	if n.LockProbe != nil {
		return n.LockProbe(ctx)
	}
	return IsScreenLocked(ctx, n.Runner)
}

// Notify handles one completed turn: gate on session activity, probe the
// lock state, then speak or text.
func (n *Notifier) Notify(ctx context.Context, traceID string, turn store.TurnCompleted) {
	log := slog.With("trace_id", traceID)

	if n.SkipActive && n.sessionActive(ctx, turn.PaneID) {
		log.Info("notification skipped, session is active", "pane_label", turn.PaneLabel)
		return
	}

	if n.locked(ctx) {
		n.NotifyAway(ctx, traceID, turn)
		return
	}
	n.NotifyAtDesk(ctx, traceID, turn)
}

// sessionActive reports whether the user's most recently used session is the
// one owning the source pane.
func (n *Notifier) sessionActive(ctx context.Context, paneID string) bool {
	active, err := n.Tmux.ActiveSession(ctx)
	if err != nil || active == "" {
		return false
	}
	paneSession, err := n.Tmux.PaneSession(ctx, paneID)
	if err != nil || paneSession == "" {
		return false
	}
	return active == paneSession
}

// NotifyAtDesk speaks a short completion summary through the TTS command.
// The at-desk path never updates routing state.
func (n *Notifier) NotifyAtDesk(ctx context.Context, traceID string, turn store.TurnCompleted) {
	log := slog.With("trace_id", traceID)

	summary := n.Summarizer.ShortSummary(ctx, turn.LastUserPrompt)
	message := fmt.Sprintf("%s on %s and waiting for further instructions", summary, turn.MainContext)

	args := append([]string{}, n.TTS.Args...)
	if n.TTS.Voice != "" {
		args = append(args, "-v", n.TTS.Voice)
	}
	args = append(args, message)
	if _, err := n.Runner.Run(ctx, execx.Command(n.TTS.Command, args...)); err != nil {
		log.Warn("tts failed", "error", err)
		return
	}
	log.Info("tts notification sent")
	n.record(ctx, log, traceID, store.NotificationSent{
		Kind:        "tts",
		TargetAgent: turn.PaneLabel,
		Body:        message,
	})
}

// NotifyAway texts the assistant's message. Consecutive identical bodies to
// the same recipient are deduplicated against the message database.
func (n *Notifier) NotifyAway(ctx context.Context, traceID string, turn store.TurnCompleted) {
	log := slog.With("trace_id", traceID)

	if n.Messenger == nil || n.Messenger.Recipient == "" {
		log.Warn("imessage recipient not configured")
		return
	}

	body := strings.ReplaceAll(truncateRunes(turn.AssistantMessage, 280), "\n", " ")
	mainBody, followUp := SplitBody(body)
	message := fmt.Sprintf("[%s] %s (%s)", turn.PaneLabel, mainBody, turn.MainContext)

	if n.isDuplicate(ctx, message) {
		log.Info("imessage skipped, duplicate of last outgoing")
		return
	}

	if err := n.Messenger.Send(ctx, outboundPrefix+message); err != nil {
		log.Warn("imessage send failed", "error", err)
		return
	}
	log.Info("imessage notification sent", "pane_label", turn.PaneLabel)
	n.State.SetLastAwaySource(routing.NewTmuxPane(n.Tmux, turn.PaneID, turn.PaneLabel))

	if followUp != "" {
		if err := n.Messenger.Send(ctx, outboundPrefix+followUp); err != nil {
			log.Warn("imessage follow-up send failed", "error", err)
		}
	}

	n.record(ctx, log, traceID, store.NotificationSent{
		Kind:        "imessage",
		TargetAgent: turn.PaneLabel,
		Body:        message,
		FollowUp:    followUp,
	})
}

// isDuplicate compares the composed body against the most recent outgoing
// text to the first configured handle, ignoring Harold's outbound prefix.
func (n *Notifier) isDuplicate(ctx context.Context, message string) bool {
	if n.Chat == nil || len(n.Imessage.HandleIDs) == 0 {
		return false
	}
	last, err := n.Chat.LastOutgoingText(ctx, n.Imessage.HandleIDs[0])
	if err != nil {
		slog.Debug("dedup query failed", "error", err)
		return false
	}
	if last == "" {
		return false
	}
	last = strings.TrimSpace(strings.TrimPrefix(last, strings.TrimSpace(outboundPrefix)))
	return last == strings.TrimSpace(message)
}

// record appends a NotificationSent event; failures are logged, never raised.
func (n *Notifier) record(ctx context.Context, log *slog.Logger, traceID string, sent store.NotificationSent) {
	if n.Store == nil {
		return
	}
	if _, err := n.Store.Append(ctx, store.StreamID, store.TypeNotificationSent, traceID, sent); err != nil {
		log.Warn("append NotificationSent failed", "error", err)
	}
}

// SplitBody splits off a trailing question sentence so it can be sent as a
// separate follow-up message. The split point is the start of the last
// sentence ending in '?'.
func SplitBody(body string) (main, followUp string) {
	qPos := strings.LastIndexByte(body, '?')
	if qPos >= 0 {
		sentenceStart := strings.LastIndexByte(body[:qPos], '.') + 1
		question := strings.TrimSpace(body[sentenceStart : qPos+1])
		rest := strings.TrimSpace(body[:sentenceStart])
		if rest != "" && question != "" {
			return rest, question
		}
	}
	return strings.TrimSpace(body), ""
}
