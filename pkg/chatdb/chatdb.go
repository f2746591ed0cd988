// Package chatdb reads the OS message database (a SQLite file owned by the
// messaging app). Harold only ever reads it, and does so through a single
// read-only handle shared by the listener and the notifier's dedup check.
// Every query uses bound parameters; handle ids are validated before they
// reach an IN list.
package chatdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

var handleIDPattern = regexp.MustCompile(`^[0-9]+$`)

// Row is one message row keyed by its monotonically increasing rowid.
type Row struct {
	RowID int64
	Text  string
}

// DB is a lazily opened read-only handle on the message database. The file
// belongs to the messaging app and may not exist yet when Harold starts;
// opening is deferred to first use so the daemon can come up regardless.
type DB struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// Open prepares a handle for the message database at path. The file is not
// touched until the first query.
func Open(path string) *DB {
	return &DB{path: path}
}

func (d *DB) handle() (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db != nil {
		return d.db, nil
	}
	dsn := fmt.Sprintf("file:%s?mode=ro", d.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open chat db %s: %w", d.path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping chat db %s: %w", d.path, err)
	}
	d.db = db
	return db, nil
}

// Close releases the underlying handle if one was opened.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// validateHandleIDs formats ids and rejects any that is not a plain decimal
// number, so nothing but digits can ever be substituted into an IN list.
func validateHandleIDs(ids []int64) ([]string, error) {
	if len(ids) == 0 {
		return nil, errors.New("no handle ids configured")
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		s := strconv.FormatInt(id, 10)
		if !handleIDPattern.MatchString(s) {
			return nil, fmt.Errorf("invalid handle id %q", s)
		}
		out = append(out, s)
	}
	return out, nil
}

// MaxRowID returns the highest rowid in the message table (0 when empty).
func (d *DB) MaxRowID(ctx context.Context) (int64, error) {
	db, err := d.handle()
	if err != nil {
		return 0, err
	}
	var max sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(ROWID) FROM message").Scan(&max); err != nil {
		return 0, fmt.Errorf("query max rowid: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

// FetchAfter returns non-empty text rows with ROWID > after from the given
// handles, in rowid order. fromMe selects the direction (0 inbound, 1 self).
func (d *DB) FetchAfter(ctx context.Context, after int64, handleIDs []int64, fromMe int) ([]Row, error) {
	db, err := d.handle()
	if err != nil {
		return nil, err
	}
	ids, err := validateHandleIDs(handleIDs)
	if err != nil {
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(
		"SELECT ROWID, text FROM message WHERE ROWID > ? AND handle_id IN (%s) AND is_from_me = ? "+
			"AND text IS NOT NULL AND length(text) > 0 ORDER BY ROWID", placeholders)

	args := make([]any, 0, len(ids)+2)
	args = append(args, after)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, fromMe)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.RowID, &r.Text); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		r.Text = strings.TrimSpace(r.Text)
		out = append(out, r)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	return out, nil
}

// LastOutgoingText returns the most recent outgoing text to the given
// handle, or "" when there is none.
func (d *DB) LastOutgoingText(ctx context.Context, handleID int64) (string, error) {
	db, err := d.handle()
	if err != nil {
		return "", err
	}
	ids, err := validateHandleIDs([]int64{handleID})
	if err != nil {
		return "", err
	}
	var text sql.NullString
	err = db.QueryRowContext(ctx,
		"SELECT text FROM message WHERE handle_id = ? AND is_from_me = 1 ORDER BY ROWID DESC LIMIT 1",
		ids[0]).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last outgoing text: %w", err)
	}
	return strings.TrimSpace(text.String), nil
}
