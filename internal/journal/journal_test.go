package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "journal.db")
	j, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = j.Close()
	})
	return j, path
}

func TestRecordAndRecent(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{CheckedAt: base, ListingURL: "https://jdk.java.net/jextract/", Major: 25, Chosen: "25-jextract+2-4", Reason: "no-prior-version", Updated: true},
		{CheckedAt: base.Add(time.Hour), ListingURL: "https://jdk.java.net/jextract/", Major: 25, Skipped: true, Error: "fetch https://jdk.java.net/jextract/: timeout"},
		{CheckedAt: base.Add(2 * time.Hour), ListingURL: "https://jdk.java.net/jextract/", Major: 25, Stored: "25-jextract+2-4", Chosen: "25-jextract+2-4", Reason: "already-up-to-date"},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []Entry{entries[2], entries[1]}
	want[0].ID, want[1].ID = 3, 2
	if diff := pretty.Compare(want, got); diff != "" {
		t.Fatalf("Recent mismatch (-want +got):\n%s", diff)
	}

	all, err := j.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent all: %v", err)
	}
	if len(all) != 3 || all[2].Reason != "no-prior-version" || !all[2].Updated {
		t.Fatalf("unexpected history: %+v", all)
	}
}

func TestRecordStampsTime(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	if err := j.Record(ctx, Entry{ListingURL: "https://example.test/", Major: 22}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].CheckedAt.Before(before) {
		t.Fatalf("expected fresh timestamp, got %+v", got)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	j, path := openTestJournal(t)
	ctx := context.Background()

	if err := j.Record(ctx, Entry{ListingURL: "https://example.test/", Major: 25, Reason: "newer", Updated: true}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	again, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = again.Close()
	}()
	got, err := again.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Reason != "newer" {
		t.Fatalf("history lost across reopen: %+v", got)
	}
}
