package activity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/vinpro/dealdesk/internal/types"
	_ "modernc.org/sqlite"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	store := NewSQLiteStore(db)
	if err := store.CreateTable(context.Background()); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	entry := makeEntry("ev-1", "deal", "d-1", "subject", now)
	entry.SourceRefs = []types.SourceRef{
		{EntityType: "deal", EntityID: "d-1", Role: "subject"},
		{EntityType: "customer", EntityID: "c-1", Role: "context"},
	}
	entry.Payload = []byte(`{"from":"pending_manager","to":"approved"}`)

	if err := store.WriteEntries(ctx, []types.ActivityEntry{entry}); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	got, _, total, err := store.QueryByEntity(ctx, "deal", "d-1", DefaultQueryOptions())
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("total=%d len=%d, want 1/1", total, len(got))
	}

	e := got[0]
	if e.EventID != "ev-1" || e.EventType != "deal.status_changed" {
		t.Errorf("identity fields: %+v", e)
	}
	if !e.OccurredAt.Equal(entry.OccurredAt) {
		t.Errorf("OccurredAt = %v, want %v", e.OccurredAt, entry.OccurredAt)
	}
	if len(e.SourceRefs) != 2 || e.SourceRefs[1].EntityID != "c-1" {
		t.Errorf("SourceRefs = %+v", e.SourceRefs)
	}
	if string(e.Payload) != `{"from":"pending_manager","to":"approved"}` {
		t.Errorf("Payload = %s", e.Payload)
	}
	if e.Actor != "mgr-01" {
		t.Errorf("Actor = %q", e.Actor)
	}
}

func TestSQLiteStoreIgnoresDuplicateDelivery(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	entry := makeEntry("ev-1", "deal", "d-1", "subject", time.Now())
	for i := 0; i < 2; i++ {
		if err := store.WriteEntries(ctx, []types.ActivityEntry{entry}); err != nil {
			t.Fatalf("WriteEntries #%d: %v", i+1, err)
		}
	}

	_, _, total, err := store.QueryByEntity(ctx, "deal", "d-1", DefaultQueryOptions())
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d after duplicate write, want 1", total)
	}
}

func TestSQLiteStorePaginationAndFilters(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	var entries []types.ActivityEntry
	weights := []string{"info", "minor", "major", "critical", "info"}
	for i, w := range weights {
		e := makeEntry("ev-"+string(rune('a'+i)), "deal", "d-1", "subject", base.Add(time.Duration(i)*time.Minute))
		e.Weight = w
		entries = append(entries, e)
	}
	if err := store.WriteEntries(ctx, entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	opts := DefaultQueryOptions()
	opts.Limit = 3
	page1, cursor, total, err := store.QueryByEntity(ctx, "deal", "d-1", opts)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 5 || len(page1) != 3 || cursor == "" {
		t.Fatalf("page 1: total=%d len=%d cursor=%q", total, len(page1), cursor)
	}
	if page1[0].EventID != "ev-e" {
		t.Errorf("page 1 newest = %s, want ev-e", page1[0].EventID)
	}

	opts.Cursor = cursor
	page2, _, _, err := store.QueryByEntity(ctx, "deal", "d-1", opts)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 2 || page2[0].EventID != "ev-b" {
		t.Errorf("page 2: len=%d first=%s, want 2 starting at ev-b", len(page2), page2[0].EventID)
	}

	wopts := DefaultQueryOptions()
	wopts.MinWeight = "major"
	weighted, _, _, err := store.QueryByEntity(ctx, "deal", "d-1", wopts)
	if err != nil {
		t.Fatalf("weight filter: %v", err)
	}
	if len(weighted) != 2 {
		t.Errorf("weight filter: len = %d, want 2 (major + critical)", len(weighted))
	}
}

func TestSQLiteStoreRecentAndPurge(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	entries := []types.ActivityEntry{
		makeEntry("ev-1", "deal", "d-1", "subject", now.AddDate(0, 0, -120)),
		makeEntry("ev-1", "customer", "c-1", "context", now.AddDate(0, 0, -120)),
		makeEntry("ev-2", "deal", "d-2", "subject", now),
	}
	if err := store.WriteEntries(ctx, entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	opts := QueryOptions{Limit: 10}
	recent, err := store.Recent(ctx, opts)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent len = %d, want 2 (subject rows only)", len(recent))
	}

	removed, err := store.PurgeBefore(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	recent, err = store.Recent(ctx, opts)
	if err != nil {
		t.Fatalf("Recent after purge: %v", err)
	}
	if len(recent) != 1 || recent[0].EventID != "ev-2" {
		t.Errorf("after purge: %+v", recent)
	}
}

func TestSQLiteStoreSearch(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	a := makeEntry("ev-1", "customer", "c-1", "subject", now.Add(-time.Minute))
	a.Summary = "New lead captured: Maria Flores"
	a.Category = "customer"
	b := makeEntry("ev-2", "deal", "d-1", "subject", now)
	b.Summary = "Deal approved by desk manager"

	if err := store.WriteEntries(ctx, []types.ActivityEntry{a, b}); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	got, total, err := store.Search(ctx, "lead", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].EventID != "ev-1" {
		t.Errorf("Search: total=%d len=%d", total, len(got))
	}

	sopts := DefaultSearchOptions()
	sopts.Categories = []string{"deal"}
	got, _, err = store.Search(ctx, "deal", sopts)
	if err != nil {
		t.Fatalf("Search with category: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "ev-2" {
		t.Errorf("category-scoped search: %+v", got)
	}
}
