package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open(%s): %v", dir, err)
	}
	return s
}

func TestAppendSequencesAreStrictlyIncreasing(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	var prev int64
	for i := 0; i < 20; i++ {
		seq, err := s.Append(ctx, StreamID, TypeReplyReceived, "", ReplyReceived{Text: "hi", Direction: DirectionInbound})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if seq != prev+1 {
			t.Fatalf("seq %d after %d: want %d", seq, prev, prev+1)
		}
		prev = seq
	}
}

func TestReadReturnsEventsInOrder(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.Append(ctx, StreamID, TypeReplyReceived, "trace", ReplyReceived{Text: "m", Direction: DirectionSelf}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := s.Read(ctx, StreamID, 0, 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	for i, ev := range events {
		if ev.Seq != int64(i+1) {
			t.Fatalf("event %d has seq %d", i, ev.Seq)
		}
		if ev.TraceID != "trace" {
			t.Fatalf("event %d trace_id = %q", i, ev.TraceID)
		}
	}

	tail, err := s.Read(ctx, StreamID, 3, 10)
	if err != nil {
		t.Fatalf("read tail: %v", err)
	}
	if len(tail) != 2 || tail[0].Seq != 4 {
		t.Fatalf("read after 3 = %+v", tail)
	}
}

func TestReadLimit(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := s.Append(ctx, StreamID, TypeReplyReceived, "", ReplyReceived{Text: "m"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	events, err := s.Read(ctx, StreamID, 0, 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
}

func TestReopenResumesSequence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := openTestStore(t, dir)
	for i := 0; i < 3; i++ {
		if _, err := s.Append(ctx, StreamID, TypeReplyReceived, "", ReplyReceived{Text: "a"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen a store that already created its schema, including the catalog
	// tables with composite uniqueness constraints.
	s2 := openTestStore(t, dir)
	defer s2.Close()
	seq, err := s2.Append(ctx, StreamID, TypeReplyReceived, "", ReplyReceived{Text: "b"})
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if seq != 4 {
		t.Fatalf("seq after reopen = %d, want 4", seq)
	}

	events, err := s2.Read(ctx, StreamID, 0, 0)
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events after reopen, want 4", len(events))
	}
}

func TestPartitionSelectionByWallClockDate(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)
	defer s.Close()
	ctx := context.Background()

	day1 := time.Date(2026, 8, 5, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 6, 1, 0, 0, 0, time.UTC)

	s.nowFunc = func() time.Time { return day1 }
	if _, err := s.Append(ctx, StreamID, TypeReplyReceived, "", ReplyReceived{Text: "one"}); err != nil {
		t.Fatalf("append day1: %v", err)
	}
	s.nowFunc = func() time.Time { return day2 }
	if _, err := s.Append(ctx, StreamID, TypeReplyReceived, "", ReplyReceived{Text: "two"}); err != nil {
		t.Fatalf("append day2: %v", err)
	}

	for _, name := range []string{"events_20260805.db", "events_20260806.db"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("partition %s missing: %v", name, err)
		}
	}

	// Sequence stays monotonic across the partition boundary.
	events, err := s.Read(ctx, StreamID, 0, 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 || events[0].Seq != 1 || events[1].Seq != 2 {
		t.Fatalf("cross-partition read = %+v", events)
	}
}

func TestSubscribeDeliversBacklogAndNewEvents(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	defer s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := s.Append(ctx, StreamID, TypeReplyReceived, "", ReplyReceived{Text: "backlog"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	ch := s.Subscribe(ctx, StreamID, 0)

	first := <-ch
	if first.Seq != 1 {
		t.Fatalf("first event seq = %d", first.Seq)
	}

	go func() {
		_, _ = s.Append(context.Background(), StreamID, TypeReplyReceived, "", ReplyReceived{Text: "live"})
	}()

	select {
	case second := <-ch:
		if second.Seq != 2 {
			t.Fatalf("second event seq = %d", second.Seq)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not wake on append")
	}

	cancel()
	if _, ok := <-ch; ok {
		// One buffered event may still arrive; the channel must close soon.
		for range ch {
		}
	}
}

func TestCheckpointTruncatesWAL(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir)
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if _, err := s.Append(ctx, StreamID, TypeReplyReceived, "", ReplyReceived{Text: "fill the wal"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := s.Checkpoint(ctx); err != nil {
		t.Fatalf("checkpoint: %v", err)
	}

	wals, err := filepath.Glob(filepath.Join(dir, "*-wal"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	for _, wal := range wals {
		info, err := os.Stat(wal)
		if err != nil {
			t.Fatalf("stat %s: %v", wal, err)
		}
		if info.Size() != 0 {
			t.Fatalf("%s is %d bytes after checkpoint, want 0", wal, info.Size())
		}
	}
}

func TestProjectionSeqRoundTrip(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	seq, err := s.ProjectionSeq(ctx, "test.consumer")
	if err != nil {
		t.Fatalf("initial projection seq: %v", err)
	}
	if seq != 0 {
		t.Fatalf("initial projection seq = %d, want 0", seq)
	}

	if err := s.SetProjectionSeq(ctx, "test.consumer", 42); err != nil {
		t.Fatalf("set projection seq: %v", err)
	}
	if err := s.SetProjectionSeq(ctx, "test.consumer", 43); err != nil {
		t.Fatalf("update projection seq: %v", err)
	}

	seq, err = s.ProjectionSeq(ctx, "test.consumer")
	if err != nil {
		t.Fatalf("projection seq: %v", err)
	}
	if seq != 43 {
		t.Fatalf("projection seq = %d, want 43", seq)
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		stream string
		want   string
	}{
		{"harold.events", "harold_events"},
		{"plain", "plain"},
		{"0numeric", "s_0numeric"},
		{"", "s_"},
	}
	for _, tt := range tests {
		if got := tableName(tt.stream); got != tt.want {
			t.Errorf("tableName(%q) = %q, want %q", tt.stream, got, tt.want)
		}
	}
}
