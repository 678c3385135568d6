package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"interview-coach-service/internal/domain"
)

func openTestStore(t *testing.T) *SessionStore {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		var got string
		if err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSessionStoreVersioning(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	session := &domain.Session{ID: "s1", UserID: "u1", Status: domain.StatusScheduled, CreatedAt: time.Now().UTC()}
	if err := s.Put(ctx, session); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if session.Version != 1 {
		t.Fatalf("expected version 1, got %d", session.Version)
	}

	stale, _ := s.Get(ctx, "s1")
	session.Status = domain.StatusInProgress
	if err := s.Put(ctx, session); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Put(ctx, stale); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
	if err := s.Put(ctx, &domain.Session{ID: "s1", UserID: "u1"}); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected conflict on duplicate insert, got %v", err)
	}
	if err := s.Put(ctx, &domain.Session{ID: "ghost", Version: 2}); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusInProgress || got.Version != 2 {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestSessionStoreListByUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	_ = s.Put(ctx, &domain.Session{ID: "b", UserID: "u1", CreatedAt: base.Add(time.Minute)})
	_ = s.Put(ctx, &domain.Session{ID: "a", UserID: "u1", CreatedAt: base})
	_ = s.Put(ctx, &domain.Session{ID: "c", UserID: "u2", CreatedAt: base})

	list, err := s.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestFileBackedJournalMode(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}
