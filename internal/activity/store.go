package activity

import (
	"context"
	"time"

	"github.com/vinpro/dealdesk/internal/types"
)

// Store is the interface for reading and writing activity entries. Entries
// are denormalized documents kept outside the relational entity tables.
type Store interface {
	// WriteEntries writes one or more activity entries (one event → many entries).
	WriteEntries(ctx context.Context, entries []types.ActivityEntry) error

	// QueryByEntity returns activity entries for a specific entity.
	QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) (entries []types.ActivityEntry, nextCursor string, totalCount int, err error)

	// Recent returns the newest entries across all entities, deduplicated by
	// event, for the dashboard pulse feed.
	Recent(ctx context.Context, opts QueryOptions) ([]types.ActivityEntry, error)

	// Search performs substring search across activity summaries.
	Search(ctx context.Context, query string, opts SearchOptions) (entries []types.ActivityEntry, totalCount int, err error)

	// PurgeBefore deletes entries older than cutoff, returning how many rows
	// were removed. Backs the 90-day retention policy.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
