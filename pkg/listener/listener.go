// Package listener tails the OS message database for the user's replies.
// It wakes on filesystem notifications with a fallback poll, and appends a
// ReplyReceived event per new row with at-least-once semantics: a cursor
// only advances after the corresponding append is durable.
package listener

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"harold/pkg/chatdb"
	"harold/pkg/store"
)

// fallbackPollInterval is the safety-net poll cadence when no filesystem
// events arrive.
const fallbackPollInterval = 5 * time.Second

// queryErrorBackoff is added to the next poll after a failed query.
const queryErrorBackoff = time.Second

// Listener watches chat.db and feeds the event store.
type Listener struct {
	Store     *store.Store
	Chat      *chatdb.DB
	ChatPath  string
	HandleIDs []int64
	StatePath string

	cursors *Cursors
	backoff time.Duration
}

// Run blocks until ctx is cancelled. A partially processed batch is
// abandoned at the iteration boundary with its cursors un-advanced.
func (l *Listener) Run(ctx context.Context) {
	if err := l.initCursors(ctx); err != nil {
		slog.Error("listener cursor init failed", "error", err)
		return
	}
	slog.Info("listener started",
		"inbound_rowid", l.cursors.Inbound, "self_rowid", l.cursors.Self)

	events := l.startWatcher(ctx)

	timer := time.NewTimer(fallbackPollInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("listener shutting down")
			return
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// Coalesce bursts of filesystem events into one poll.
			drain(events)
			l.poll(ctx)
		case <-timer.C:
			l.poll(ctx)
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(fallbackPollInterval + l.backoff)
	}
}

// initCursors loads persisted cursors, or on first run positions both at the
// current end of the message table so history is not replayed.
func (l *Listener) initCursors(ctx context.Context) error {
	cursors, existed, err := LoadCursors(l.StatePath)
	if err != nil {
		return err
	}
	l.cursors = cursors
	if existed {
		return nil
	}
	max, err := l.Chat.MaxRowID(ctx)
	if err != nil {
		slog.Warn("initial max rowid unavailable, starting from 0", "error", err)
		max = 0
	}
	l.cursors.Inbound = max
	l.cursors.Self = max
	return l.cursors.Save()
}

// startWatcher watches the chat.db directory for changes to the database or
// its WAL. Watcher failures fall back to poll-only operation.
func (l *Listener) startWatcher(ctx context.Context) <-chan struct{} {
	events := make(chan struct{}, 1)

	dbName := filepath.Base(l.ChatPath)
	relevant := map[string]bool{
		dbName:          true,
		dbName + "-wal": true,
		dbName + "-shm": true,
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("fsnotify unavailable, poll-only mode", "error", err)
		return events
	}
	if err := watcher.Add(filepath.Dir(l.ChatPath)); err != nil {
		slog.Warn("cannot watch chat.db directory, poll-only mode", "error", err)
		_ = watcher.Close()
		return events
	}
	slog.Info("fs watcher active", "dir", filepath.Dir(l.ChatPath))

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				close(events)
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					close(events)
					return
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				if !relevant[filepath.Base(ev.Name)] {
					continue
				}
				select {
				case events <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					close(events)
					return
				}
				slog.Warn("fs watcher error", "error", err)
			}
		}
	}()
	return events
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// poll runs both direction queries and appends an event per new row. On a
// query error the next fallback poll is delayed by one extra second and no
// cursor moves.
func (l *Listener) poll(ctx context.Context) {
	l.backoff = 0
	l.pollDirection(ctx, store.DirectionInbound, 0, &l.cursors.Inbound)
	l.pollDirection(ctx, store.DirectionSelf, 1, &l.cursors.Self)
}

func (l *Listener) pollDirection(ctx context.Context, direction string, fromMe int, cursor *int64) {
	if len(l.HandleIDs) == 0 {
		return
	}
	rows, err := l.Chat.FetchAfter(ctx, *cursor, l.HandleIDs, fromMe)
	if err != nil {
		slog.Warn("listener query failed", "direction", direction, "error", err)
		l.backoff = queryErrorBackoff
		return
	}

	for _, row := range rows {
		// Skip rows echoing Harold's own notifications; the cursor still
		// advances past inspected rows.
		if row.Text == "" || strings.HasPrefix(row.Text, "🤖") {
			l.advance(cursor, row.RowID)
			continue
		}

		traceID := uuid.NewString()
		log := slog.With("trace_id", traceID, "rowid", row.RowID, "direction", direction)
		log.Info("reply received")

		_, err := l.Store.Append(ctx, store.StreamID, store.TypeReplyReceived, traceID,
			store.ReplyReceived{Text: row.Text, Direction: direction})
		if err != nil {
			// Cursor stays; this row is retried on the next tick.
			log.Warn("append ReplyReceived failed", "error", err)
			return
		}
		l.advance(cursor, row.RowID)
	}
}

// advance moves a cursor past an acknowledged row and persists the state
// file. A failed save only risks re-delivery, which downstream tolerates.
func (l *Listener) advance(cursor *int64, rowID int64) {
	*cursor = rowID
	if err := l.cursors.Save(); err != nil {
		slog.Warn("cursor save failed", "error", err)
	}
}
