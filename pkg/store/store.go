// Package store implements Harold's durable append-only event log: an
// embedded SQLite catalog plus per-day partition files, all in WAL mode.
// Streams map to tables; sequence numbers are monotonic per stream across
// partitions. The Store is the sole owner of its database files — no other
// component may open a second handle while it is in use.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Error kinds surfaced by the store.
var (
	// ErrSchema marks table creation or catalog bootstrap failures. The
	// store never evolves an existing table in place; a schema error is
	// fatal at startup.
	ErrSchema = errors.New("store schema")
	// ErrWrite marks a failed append.
	ErrWrite = errors.New("store write")
)

const (
	dayFormat     = "20060102"
	partitionGlob = "events_*.db"
)

// Store is a partitioned append-only event log.
type Store struct {
	dir     string
	catalog *sql.DB

	mu       sync.Mutex
	parts    map[string]*sql.DB // day -> partition handle
	days     []string           // sorted day keys
	tables   map[string]string  // stream -> table name
	hasTable map[string]bool    // day + "/" + table
	lastSeq  map[string]int64   // stream -> high-water mark
	wake     chan struct{}      // closed and replaced on every append

	nowFunc func() time.Time
}

// Open opens (or creates) the store rooted at dir. It bootstraps the
// catalog, opens every registered partition, and loads per-stream sequence
// high-water marks so appends resume without gaps or duplicates.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}

	catalog, err := openDB(filepath.Join(dir, "catalog.db"))
	if err != nil {
		return nil, err
	}
	if _, err := catalog.Exec(catalogDDL); err != nil {
		_ = catalog.Close()
		return nil, fmt.Errorf("%w: bootstrap catalog: %w", ErrSchema, err)
	}

	s := &Store{
		dir:      dir,
		catalog:  catalog,
		parts:    make(map[string]*sql.DB),
		tables:   make(map[string]string),
		hasTable: make(map[string]bool),
		lastSeq:  make(map[string]int64),
		wake:     make(chan struct{}),
		nowFunc:  time.Now,
	}
	if err := s.loadCatalog(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// openDB opens one SQLite file with production-safe defaults: WAL journal
// mode, a 5-second busy timeout, and a pool capped at a single connection
// so the file has exactly one handle process-wide.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}
	return db, nil
}

// loadCatalog opens registered partitions (merging in any partition files
// present on disk but missing from the registry), loads the stream table
// registry, and computes per-stream sequence high-water marks.
func (s *Store) loadCatalog() error {
	rows, err := s.catalog.Query("SELECT stream, tbl FROM streams")
	if err != nil {
		return fmt.Errorf("%w: read stream registry: %w", ErrSchema, err)
	}
	for rows.Next() {
		var stream, tbl string
		if err := rows.Scan(&stream, &tbl); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan stream registry: %w", err)
		}
		s.tables[stream] = tbl
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("read stream registry: %w", err)
	}

	dayset := make(map[string]bool)
	rows, err = s.catalog.Query("SELECT day FROM partitions")
	if err != nil {
		return fmt.Errorf("%w: read partition registry: %w", ErrSchema, err)
	}
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan partition registry: %w", err)
		}
		dayset[day] = true
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("read partition registry: %w", err)
	}

	// A crash can leave a partition file that never made it into the
	// registry; pick those up from disk.
	matches, err := filepath.Glob(filepath.Join(s.dir, partitionGlob))
	if err != nil {
		return fmt.Errorf("glob partitions: %w", err)
	}
	for _, path := range matches {
		name := filepath.Base(path)
		day := strings.TrimSuffix(strings.TrimPrefix(name, "events_"), ".db")
		dayset[day] = true
	}

	for day := range dayset {
		if err := s.openPartition(day); err != nil {
			return err
		}
	}
	sort.Strings(s.days)

	for stream, tbl := range s.tables {
		for _, day := range s.days {
			if !s.hasTable[day+"/"+tbl] {
				continue
			}
			var max sql.NullInt64
			q := fmt.Sprintf("SELECT MAX(seq) FROM %q", tbl)
			if err := s.parts[day].QueryRow(q).Scan(&max); err != nil {
				return fmt.Errorf("load high-water mark for %s: %w", stream, err)
			}
			if max.Valid && max.Int64 > s.lastSeq[stream] {
				s.lastSeq[stream] = max.Int64
			}
		}
	}
	return nil
}

// openPartition opens one partition file, registers it, and records which
// stream tables it holds. Caller holds no lock (Open) or s.mu (append path).
func (s *Store) openPartition(day string) error {
	if _, ok := s.parts[day]; ok {
		return nil
	}
	path := filepath.Join(s.dir, "events_"+day+".db")
	if _, err := s.catalog.Exec(
		"INSERT OR IGNORE INTO partitions (day, path, created_ts) VALUES (?, ?, ?)",
		day, path, s.now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("%w: register partition %s: %w", ErrWrite, day, err)
	}
	db, err := openDB(path)
	if err != nil {
		return err
	}
	s.parts[day] = db
	s.days = append(s.days, day)

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return fmt.Errorf("scan partition %s tables: %w", day, err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan partition %s tables: %w", day, err)
		}
		s.hasTable[day+"/"+name] = true
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("scan partition %s tables: %w", day, err)
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now()
}

// tableName derives a SQL identifier from a stream id.
func tableName(stream string) string {
	var b strings.Builder
	for _, r := range stream {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		name = "s_" + name
	}
	return name
}

// Append durably writes one event to the stream and returns its sequence
// number. Concurrent appenders are serialised; sequence numbers are strictly
// increasing per stream with no gaps.
func (s *Store) Append(ctx context.Context, stream, eventType, traceID string, payload any) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: marshal %s payload: %w", ErrWrite, eventType, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.now().UTC().Format(dayFormat)
	if err := s.openPartition(day); err != nil {
		return 0, err
	}
	sort.Strings(s.days)

	tbl, ok := s.tables[stream]
	if !ok {
		tbl = tableName(stream)
		if _, err := s.catalog.ExecContext(ctx,
			"INSERT OR IGNORE INTO streams (stream, tbl) VALUES (?, ?)", stream, tbl); err != nil {
			return 0, fmt.Errorf("%w: register stream %s: %w", ErrSchema, stream, err)
		}
		s.tables[stream] = tbl
	}
	key := day + "/" + tbl
	if !s.hasTable[key] {
		if _, err := s.parts[day].ExecContext(ctx, fmt.Sprintf(streamTableDDL, tbl)); err != nil {
			return 0, fmt.Errorf("%w: create table for %s: %w", ErrSchema, stream, err)
		}
		s.hasTable[key] = true
	}

	seq := s.lastSeq[stream] + 1
	_, err = s.parts[day].ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %q (seq, type, ts, trace_id, payload) VALUES (?, ?, ?, ?, ?)", tbl),
		seq, eventType, s.now().UTC().UnixMilli(), traceID, body,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: append %s to %s: %w", ErrWrite, eventType, stream, err)
	}
	s.lastSeq[stream] = seq

	// Wake subscribers.
	close(s.wake)
	s.wake = make(chan struct{})

	return seq, nil
}

// Read returns up to limit events with seq > afterSeq in order. afterSeq 0
// reads from the earliest event.
func (s *Store) Read(ctx context.Context, stream string, afterSeq int64, limit int) ([]Event, error) {
	s.mu.Lock()
	tbl, ok := s.tables[stream]
	days := append([]string(nil), s.days...)
	parts := make(map[string]*sql.DB, len(days))
	present := make(map[string]bool, len(days))
	for _, day := range days {
		parts[day] = s.parts[day]
		present[day] = s.hasTable[day+"/"+tbl]
	}
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}

	var out []Event
	for _, day := range days {
		if limit > 0 && len(out) >= limit {
			break
		}
		if !present[day] {
			continue
		}
		remaining := -1
		if limit > 0 {
			remaining = limit - len(out)
		}
		q := fmt.Sprintf("SELECT seq, type, ts, trace_id, payload FROM %q WHERE seq > ? ORDER BY seq LIMIT ?", tbl)
		rows, err := parts[day].QueryContext(ctx, q, afterSeq, remaining)
		if err != nil {
			return nil, fmt.Errorf("read %s partition %s: %w", stream, day, err)
		}
		for rows.Next() {
			var (
				ev Event
				ms int64
			)
			ev.Stream = stream
			if err := rows.Scan(&ev.Seq, &ev.Type, &ms, &ev.TraceID, &ev.Payload); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("scan %s event: %w", stream, err)
			}
			ev.TS = time.UnixMilli(ms).UTC()
			out = append(out, ev)
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("read %s partition %s: %w", stream, day, err)
		}
	}
	return out, nil
}

// Subscribe returns a channel of events with seq > fromSeq. It drains the
// backlog, then blocks until new appends arrive. The channel closes when ctx
// is cancelled; restart by subscribing again from the last seen seq.
func (s *Store) Subscribe(ctx context.Context, stream string, fromSeq int64) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		after := fromSeq
		for {
			events, err := s.Read(ctx, stream, after, 256)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("subscriber read failed", "stream", stream, "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			for _, ev := range events {
				select {
				case <-ctx.Done():
					return
				case ch <- ev:
				}
				after = ev.Seq
			}
			if len(events) > 0 {
				continue
			}
			s.mu.Lock()
			wake := s.wake
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-wake:
			}
		}
	}()
	return ch
}

// ProjectionSeq returns the recorded offset for a named consumer (0 when
// the consumer has no offset yet).
func (s *Store) ProjectionSeq(ctx context.Context, name string) (int64, error) {
	var seq int64
	err := s.catalog.QueryRowContext(ctx,
		"SELECT last_seq FROM projections WHERE name = ?", name).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read projection %s: %w", name, err)
	}
	return seq, nil
}

// SetProjectionSeq records the offset for a named consumer.
func (s *Store) SetProjectionSeq(ctx context.Context, name string, seq int64) error {
	if _, err := s.catalog.ExecContext(ctx,
		"INSERT INTO projections (name, last_seq) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET last_seq = excluded.last_seq",
		name, seq); err != nil {
		return fmt.Errorf("%w: record projection %s: %w", ErrWrite, name, err)
	}
	return nil
}

// Checkpoint runs a truncating WAL checkpoint on every database file the
// store owns. It requires no other active readers or writers; after it
// returns, every WAL file is empty.
func (s *Store) Checkpoint(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkpointDB(ctx, s.catalog, "catalog"); err != nil {
		return err
	}
	for _, day := range s.days {
		if err := checkpointDB(ctx, s.parts[day], day); err != nil {
			return err
		}
	}
	return nil
}

// checkpointDB issues the pragma and drains its result row; SQLite reports
// checkpoint status as a row, and leaving it unread keeps the statement open.
func checkpointDB(ctx context.Context, db *sql.DB, name string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	if err != nil {
		return fmt.Errorf("checkpoint %s: %w", name, err)
	}
	for rows.Next() {
		var busy, logPages, checkpointed int64
		if err := rows.Scan(&busy, &logPages, &checkpointed); err != nil {
			_ = rows.Close()
			return fmt.Errorf("checkpoint %s: %w", name, err)
		}
		if busy != 0 {
			_ = rows.Close()
			return fmt.Errorf("checkpoint %s: wal busy", name)
		}
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("checkpoint %s: %w", name, err)
	}
	return nil
}

// Close closes every database handle. Safe to call once after all tasks
// using the store have stopped.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, day := range s.days {
		if err := s.parts[day].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close partition %s: %w", day, err)
		}
	}
	if err := s.catalog.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close catalog: %w", err)
	}
	return firstErr
}
