package conversation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pitchsmith/pitchsmith/internal/db"
	"github.com/pitchsmith/pitchsmith/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "conversation-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewStore(conn, nil)
}

func TestEnsureCreatesThreadWithDerivedTitle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	conv, errEnsure := store.Ensure(ctx, 1, "", "How do I price a logo design project?")
	if errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}
	if conv.PublicID == "" {
		t.Fatalf("expected a public id")
	}
	if conv.Title != "How do I price a logo design project?" {
		t.Fatalf("unexpected title %q", conv.Title)
	}

	again, errGet := store.Ensure(ctx, 1, conv.PublicID, "ignored")
	if errGet != nil {
		t.Fatalf("ensure existing: %v", errGet)
	}
	if again.ID != conv.ID {
		t.Fatalf("expected same thread, got %d and %d", conv.ID, again.ID)
	}
}

func TestEnsureTruncatesLongTitles(t *testing.T) {
	store := openTestStore(t)

	long := strings.Repeat("a", 80)
	conv, errEnsure := store.Ensure(context.Background(), 1, "", long)
	if errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}
	if len([]rune(conv.Title)) != 53 || !strings.HasSuffix(conv.Title, "...") {
		t.Fatalf("expected truncated title with ellipsis, got %q", conv.Title)
	}
}

func TestEnsureRejectsForeignThread(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	conv, errEnsure := store.Ensure(ctx, 1, "", "hello")
	if errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}
	if _, errGet := store.Ensure(ctx, 2, conv.PublicID, ""); !errors.Is(errGet, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", errGet)
	}
}

func TestRecentWindowReturnsLastNInOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	conv, errEnsure := store.Ensure(ctx, 1, "", "start")
	if errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}
	for i := 0; i < 15; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		if errAppend := store.Append(ctx, conv.ID, role, fmt.Sprintf("msg-%d", i)); errAppend != nil {
			t.Fatalf("append %d: %v", i, errAppend)
		}
	}

	window, errWindow := store.RecentWindow(ctx, conv.ID, 10)
	if errWindow != nil {
		t.Fatalf("window: %v", errWindow)
	}
	if len(window) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(window))
	}
	if window[0].Content != "msg-5" || window[9].Content != "msg-14" {
		t.Fatalf("unexpected window bounds: first=%q last=%q", window[0].Content, window[9].Content)
	}
}

func TestRenameAndListOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, _ := store.Ensure(ctx, 1, "", "first")
	if _, errEnsure := store.Ensure(ctx, 1, "", "second"); errEnsure != nil {
		t.Fatalf("ensure second: %v", errEnsure)
	}

	if errRename := store.Rename(ctx, 1, first.PublicID, "renamed"); errRename != nil {
		t.Fatalf("rename: %v", errRename)
	}
	if errRename := store.Rename(ctx, 1, "missing", "x"); !errors.Is(errRename, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errRename)
	}

	rows, errList := store.ListByUser(ctx, 1)
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(rows))
	}
	if rows[0].Title != "renamed" {
		t.Fatalf("expected most recently touched thread first, got %q", rows[0].Title)
	}
}

func TestDeleteRemovesThreadAndMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	conv, _ := store.Ensure(ctx, 1, "", "to delete")
	if errAppend := store.Append(ctx, conv.ID, models.RoleUser, "hello"); errAppend != nil {
		t.Fatalf("append: %v", errAppend)
	}

	if errDelete := store.Delete(ctx, 1, conv.PublicID); errDelete != nil {
		t.Fatalf("delete: %v", errDelete)
	}
	if _, errGet := store.Get(ctx, 1, conv.PublicID); !errors.Is(errGet, ErrNotFound) {
		t.Fatalf("expected thread gone, got %v", errGet)
	}
	window, errWindow := store.RecentWindow(ctx, conv.ID, 10)
	if errWindow != nil {
		t.Fatalf("window: %v", errWindow)
	}
	if len(window) != 0 {
		t.Fatalf("expected messages gone, got %d", len(window))
	}
}
