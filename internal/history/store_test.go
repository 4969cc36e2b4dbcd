package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Record(ctx, Entry{Prompt: "p1", Response: "r1", Meta: "m1", Model: "gemini-2.0-flash", Decoded: true})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("record must assign id and timestamp, got %+v", first)
	}
	if _, err := s.Record(ctx, Entry{Prompt: "p2", Response: "r2", Decoded: false}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("recent = %d entries, want 2", len(entries))
	}
	if entries[0].Prompt != "p2" {
		t.Errorf("newest first: got %q", entries[0].Prompt)
	}
	if entries[1].Meta != "m1" || !entries[1].Decoded {
		t.Errorf("entry fields not round-tripped: %+v", entries[1])
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := s.Record(ctx, Entry{Prompt: "p", Response: "r"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	entries, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("recent = %d entries, want 3", len(entries))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_ = s.Close()
	// reopening an already-migrated database must not fail
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = s2.Close()
}
