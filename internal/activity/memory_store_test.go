package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vinpro/dealdesk/internal/types"
)

func makeEntry(eventID, entityType, entityID, role string, occurredAt time.Time) types.ActivityEntry {
	return types.ActivityEntry{
		EventID:           eventID,
		EventType:         "deal.status_changed",
		OccurredAt:        occurredAt,
		IndexedEntityType: entityType,
		IndexedEntityID:   entityID,
		EntityRole:        role,
		Summary:           "Deal moved to approved",
		Category:          "deal",
		Weight:            "major",
		Polarity:          "positive",
		Actor:             "mgr-01",
	}
}

func TestMemoryStoreWriteAndQuery(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	entries := []types.ActivityEntry{
		makeEntry("ev-1", "deal", "d-1", "subject", now.Add(-2*time.Hour)),
		makeEntry("ev-1", "customer", "c-1", "context", now.Add(-2*time.Hour)),
		makeEntry("ev-2", "deal", "d-1", "subject", now.Add(-1*time.Hour)),
		makeEntry("ev-3", "deal", "d-2", "subject", now),
	}
	if err := store.WriteEntries(ctx, entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	got, cursor, total, err := store.QueryByEntity(ctx, "deal", "d-1", DefaultQueryOptions())
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if cursor != "" {
		t.Errorf("unexpected cursor %q for non-paginated result", cursor)
	}
	if len(got) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].EventID != "ev-2" || got[1].EventID != "ev-1" {
		t.Errorf("entries out of order: got %s, %s", got[0].EventID, got[1].EventID)
	}

	// The customer's view of the shared event.
	got, _, total, err = store.QueryByEntity(ctx, "customer", "c-1", DefaultQueryOptions())
	if err != nil {
		t.Fatalf("QueryByEntity customer: %v", err)
	}
	if total != 1 || got[0].EntityRole != "context" {
		t.Errorf("customer view: total=%d role=%q, want 1/context", total, got[0].EntityRole)
	}
}

func TestMemoryStoreCategoryAndWeightFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	a := makeEntry("ev-1", "deal", "d-1", "subject", now.Add(-3*time.Hour))
	a.Category = "finance"
	a.Weight = "info"
	b := makeEntry("ev-2", "deal", "d-1", "subject", now.Add(-2*time.Hour))
	b.Category = "deal"
	b.Weight = "critical"
	c := makeEntry("ev-3", "deal", "d-1", "subject", now.Add(-1*time.Hour))
	c.Category = "deal"
	c.Weight = "minor"

	if err := store.WriteEntries(ctx, []types.ActivityEntry{a, b, c}); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	opts := DefaultQueryOptions()
	opts.Categories = []string{"deal"}
	got, _, _, err := store.QueryByEntity(ctx, "deal", "d-1", opts)
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("category filter: len = %d, want 2", len(got))
	}

	opts = DefaultQueryOptions()
	opts.MinWeight = "major"
	got, _, _, err = store.QueryByEntity(ctx, "deal", "d-1", opts)
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "ev-2" {
		t.Errorf("weight filter: got %d entries, want only ev-2", len(got))
	}
}

func TestMemoryStoreCursorPagination(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	var entries []types.ActivityEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, makeEntry(
			fmt.Sprintf("ev-%d", i), "deal", "d-1", "subject", base.Add(time.Duration(i)*time.Minute)))
	}
	if err := store.WriteEntries(ctx, entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	opts := DefaultQueryOptions()
	opts.Limit = 2
	page1, cursor, total, err := store.QueryByEntity(ctx, "deal", "d-1", opts)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page1) != 2 || cursor == "" {
		t.Fatalf("page 1: len=%d cursor=%q, want 2 entries and a cursor", len(page1), cursor)
	}
	if page1[0].EventID != "ev-4" || page1[1].EventID != "ev-3" {
		t.Errorf("page 1 order: %s, %s", page1[0].EventID, page1[1].EventID)
	}

	opts.Cursor = cursor
	page2, _, _, err := store.QueryByEntity(ctx, "deal", "d-1", opts)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 2 || page2[0].EventID != "ev-2" {
		t.Errorf("page 2: len=%d first=%s, want 2 entries starting at ev-2", len(page2), page2[0].EventID)
	}
}

func TestMemoryStoreRecentDeduplicates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	entries := []types.ActivityEntry{
		makeEntry("ev-1", "deal", "d-1", "subject", now.Add(-time.Minute)),
		makeEntry("ev-1", "customer", "c-1", "context", now.Add(-time.Minute)),
		makeEntry("ev-1", "inventory", "v-1", "related", now.Add(-time.Minute)),
		makeEntry("ev-2", "deal", "d-2", "subject", now),
	}
	if err := store.WriteEntries(ctx, entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	got, err := store.Recent(ctx, DefaultQueryOptions())
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent len = %d, want 2 (one per event)", len(got))
	}
	if got[0].EventID != "ev-2" || got[1].EventID != "ev-1" {
		t.Errorf("Recent order: %s, %s", got[0].EventID, got[1].EventID)
	}
}

func TestMemoryStoreSearch(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	a := makeEntry("ev-1", "deal", "d-1", "subject", now.Add(-time.Minute))
	a.Summary = "New lead captured: Maria Flores"
	b := makeEntry("ev-2", "deal", "d-2", "subject", now)
	b.Summary = "Deal approved by desk manager"

	if err := store.WriteEntries(ctx, []types.ActivityEntry{a, b}); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	got, total, err := store.Search(ctx, "approved", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].EventID != "ev-2" {
		t.Errorf("Search: total=%d len=%d, want the approved entry only", total, len(got))
	}

	// Case-insensitive match.
	got, _, err = store.Search(ctx, "MARIA", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "ev-1" {
		t.Errorf("case-insensitive search failed: %+v", got)
	}
}

func TestMemoryStorePurgeBefore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	entries := []types.ActivityEntry{
		makeEntry("ev-old", "deal", "d-1", "subject", now.AddDate(0, 0, -120)),
		makeEntry("ev-new", "deal", "d-1", "subject", now),
	}
	if err := store.WriteEntries(ctx, entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}

	removed, err := store.PurgeBefore(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	opts := QueryOptions{Limit: 10}
	got, _, total, err := store.QueryByEntity(ctx, "deal", "d-1", opts)
	if err != nil {
		t.Fatalf("QueryByEntity: %v", err)
	}
	if total != 1 || got[0].EventID != "ev-new" {
		t.Errorf("after purge: total=%d, want only ev-new", total)
	}
}
