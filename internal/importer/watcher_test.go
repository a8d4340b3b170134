package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/duetlabs/duet/internal/journal"
	"github.com/duetlabs/duet/internal/testutil"
)

func testWatcher(t *testing.T) (*journal.Service, string) {
	t.Helper()

	svc := journal.NewService(testutil.TestDB(t), nil)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		defer close(done)
		if err := Watch(ctx, svc, dir, logger); err != nil {
			t.Errorf("Watch: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return svc, dir
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func entryCount(t *testing.T, svc *journal.Service) int {
	t.Helper()
	_, total, err := svc.List(context.Background(), 0, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	return total
}

func TestDroppedDraftIsImported(t *testing.T) {
	svc, dir := testWatcher(t)

	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("a quiet evening\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return entryCount(t, svc) == 1 })

	entries, _, err := svc.List(context.Background(), 0, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Content != "a quiet evening" {
		t.Errorf("content = %q, want trimmed draft text", entries[0].Content)
	}

	// The draft file is consumed.
	waitFor(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	})
}

func TestExistingDraftsImportedAtStart(t *testing.T) {
	svc := journal.NewService(testutil.TestDB(t), nil)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.txt"), []byte("left from yesterday"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		defer close(done)
		_ = Watch(ctx, svc, dir, logger)
	}()
	defer func() {
		cancel()
		<-done
	}()

	waitFor(t, func() bool { return entryCount(t, svc) == 1 })
}

func TestEmptyDraftRemovedWithoutEntry(t *testing.T) {
	svc, dir := testWatcher(t)

	path := filepath.Join(dir, "blank.md")
	if err := os.WriteFile(path, []byte("   \n\t\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	})
	if n := entryCount(t, svc); n != 0 {
		t.Errorf("entries = %d, want 0 for a blank draft", n)
	}
}

func TestIneligibleFilesIgnored(t *testing.T) {
	svc, dir := testWatcher(t)

	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("not a draft"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Give the watcher time to (wrongly) act, then check nothing happened.
	time.Sleep(2 * settle)
	if n := entryCount(t, svc); n != 0 {
		t.Errorf("entries = %d, want 0 for ineligible file", n)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("ineligible file should be left alone: %v", err)
	}
}

func TestEligible(t *testing.T) {
	cases := map[string]bool{
		"a.md":      true,
		"a.txt":     true,
		"A.MD":      true,
		"a.jpg":     false,
		"a.md.swp":  false,
		"no-ext":    false,
		".hidden":   false,
		"draft.TXT": true,
	}
	for name, want := range cases {
		if got := eligible(name); got != want {
			t.Errorf("eligible(%q) = %v, want %v", name, got, want)
		}
	}
}
