package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/duetlabs/duet/internal/apperr"
	"github.com/duetlabs/duet/internal/store"
	"github.com/duetlabs/duet/internal/testutil"
)

func TestEntryInsertAndGet(t *testing.T) {
	db := testutil.TestDB(t)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := db.InsertEntry("first entry", "you", created)
	if err != nil {
		t.Fatalf("InsertEntry: %v", err)
	}

	e, err := db.GetEntry(id)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if e.Content != "first entry" || e.Author != "you" {
		t.Errorf("entry = %+v", e)
	}
	if !e.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", e.CreatedAt, created)
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	db := testutil.TestDB(t)
	if _, err := db.GetEntry(42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListEntries_NewestFirst(t *testing.T) {
	db := testutil.TestDB(t)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, content := range []string{"oldest", "middle", "newest"} {
		if _, err := db.InsertEntry(content, "you", base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}

	rows, total, err := db.ListEntries(0, 0, "")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("total = %d, len = %d", total, len(rows))
	}
	if rows[0].Content != "newest" || rows[2].Content != "oldest" {
		t.Errorf("order = %q, %q, %q", rows[0].Content, rows[1].Content, rows[2].Content)
	}
}

func TestListEntries_Pagination(t *testing.T) {
	db := testutil.TestDB(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if _, err := db.InsertEntry("entry", "you", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	rows, total, err := db.ListEntries(2, 2, "")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(rows) != 2 {
		t.Errorf("page len = %d, want 2", len(rows))
	}
}

func TestListEntries_Filter(t *testing.T) {
	db := testutil.TestDB(t)

	now := time.Now().UTC()
	for _, content := range []string{"sunny day", "rainy day", "100% chance"} {
		if _, err := db.InsertEntry(content, "you", now); err != nil {
			t.Fatal(err)
		}
	}

	rows, total, err := db.ListEntries(0, 0, "rainy")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Content != "rainy day" {
		t.Errorf("filter result = %+v (total %d)", rows, total)
	}

	// LIKE wildcards in the filter match literally.
	rows, _, err = db.ListEntries(0, 0, "100%")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Content != "100% chance" {
		t.Errorf("wildcard filter = %+v", rows)
	}
}

func TestUpdateEntry(t *testing.T) {
	db := testutil.TestDB(t)
	id, err := db.InsertEntry("before", "you", time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateEntry(id, "after"); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	e, err := db.GetEntry(id)
	if err != nil {
		t.Fatal(err)
	}
	if e.Content != "after" {
		t.Errorf("content = %q", e.Content)
	}

	if err := db.UpdateEntry(999, "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing update err = %v, want ErrNotFound", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	db := testutil.TestDB(t)
	id, err := db.InsertEntry("bye", "you", time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteEntry(id); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if _, err := db.GetEntry(id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteEntry(id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestCredentials_LoadBeforeSeed(t *testing.T) {
	db := testutil.TestDB(t)
	if _, err := db.LoadCredentials(); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCredentials_SaveAndLoad(t *testing.T) {
	db := testutil.TestDB(t)

	row := store.CredentialRow{AuthorPIN: "6278", ViewerPIN: "1234", ViewerLabel: "Her"}
	if err := db.SaveCredentials(row); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	got, err := db.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if *got != row {
		t.Errorf("loaded = %+v, want %+v", got, row)
	}

	// Saving again replaces the singleton row.
	row.AuthorPIN = "4321"
	row.ViewerLabel = "Love"
	if err := db.SaveCredentials(row); err != nil {
		t.Fatal(err)
	}
	got, err = db.LoadCredentials()
	if err != nil {
		t.Fatal(err)
	}
	if *got != row {
		t.Errorf("replaced = %+v, want %+v", got, row)
	}
}
