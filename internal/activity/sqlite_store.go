package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vinpro/dealdesk/internal/types"
)

// SQLiteStore implements Store on the shared SQLite handle. Timestamps are
// stored as integer unix-nanos so that range filters and ORDER BY compare
// numerically, and JSON documents (source refs, payload) as TEXT.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateTable creates the activity_entries table and its indexes. Run during
// startup schema bootstrap.
func (s *SQLiteStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_entries (
			event_id            TEXT NOT NULL,
			event_type          TEXT NOT NULL,
			occurred_at         INTEGER NOT NULL,
			indexed_entity_type TEXT NOT NULL,
			indexed_entity_id   TEXT NOT NULL,
			entity_role         TEXT NOT NULL,
			source_refs         TEXT NOT NULL DEFAULT '[]',
			summary             TEXT NOT NULL,
			category            TEXT NOT NULL,
			weight              TEXT NOT NULL,
			polarity            TEXT NOT NULL,
			actor               TEXT NOT NULL DEFAULT '',
			payload             TEXT,
			PRIMARY KEY (indexed_entity_type, indexed_entity_id, occurred_at, event_id)
		);

		CREATE INDEX IF NOT EXISTS idx_activity_entity_time
			ON activity_entries (indexed_entity_type, indexed_entity_id, occurred_at DESC);

		CREATE INDEX IF NOT EXISTS idx_activity_category_time
			ON activity_entries (category, occurred_at DESC);
	`)
	return err
}

// WriteEntries inserts activity entries. Re-delivered events are ignored via
// the primary key.
func (s *SQLiteStore) WriteEntries(ctx context.Context, entries []types.ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`INSERT OR IGNORE INTO activity_entries (
		event_id, event_type, occurred_at, indexed_entity_type, indexed_entity_id,
		entity_role, source_refs, summary, category, weight, polarity, actor, payload
	) VALUES `)

	args := make([]interface{}, 0, len(entries)*13)
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")

		refsJSON, _ := json.Marshal(e.SourceRefs)
		args = append(args,
			e.EventID, e.EventType, e.OccurredAt.UnixNano(), e.IndexedEntityType, e.IndexedEntityID,
			e.EntityRole, string(refsJSON), e.Summary, e.Category, e.Weight, e.Polarity, e.Actor,
			string(e.Payload),
		)
	}

	_, err := s.db.ExecContext(ctx, b.String(), args...)
	return err
}

const entryColumns = `event_id, event_type, occurred_at, indexed_entity_type, indexed_entity_id,
	entity_role, source_refs, summary, category, weight, polarity, actor, payload`

// QueryByEntity returns activity entries for a specific entity with filtering
// and cursor pagination.
func (s *SQLiteStore) QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) ([]types.ActivityEntry, string, int, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}

	conditions := []string{"indexed_entity_type = ?", "indexed_entity_id = ?"}
	args := []interface{}{entityType, entityID}

	conditions, args = appendCommonFilters(conditions, args, opts)

	where := strings.Join(conditions, " AND ")
	query := fmt.Sprintf(
		`SELECT %s FROM activity_entries WHERE %s ORDER BY occurred_at DESC LIMIT ?`,
		entryColumns, where)
	queryArgs := append(append([]interface{}{}, args...), opts.Limit+1) // one extra for the cursor

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, "", 0, fmt.Errorf("querying activity entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, "", 0, err
	}

	var nextCursor string
	if len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
		nextCursor = entries[len(entries)-1].OccurredAt.Format(time.RFC3339Nano)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activity_entries WHERE %s", where)
	var totalCount int
	_ = s.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)

	return entries, nextCursor, totalCount, nil
}

// Recent returns the newest feed entries across all entities. Each event is
// fanned out into one entry per affected entity; restricting to the "subject"
// role yields exactly one row per event.
func (s *SQLiteStore) Recent(ctx context.Context, opts QueryOptions) ([]types.ActivityEntry, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}

	conditions := []string{"entity_role = 'subject'"}
	var args []interface{}
	conditions, args = appendCommonFilters(conditions, args, opts)

	query := fmt.Sprintf(
		`SELECT %s FROM activity_entries WHERE %s ORDER BY occurred_at DESC LIMIT ?`,
		entryColumns, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent activity: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Search performs substring search across activity summaries.
func (s *SQLiteStore) Search(ctx context.Context, query string, opts SearchOptions) ([]types.ActivityEntry, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	conditions := []string{"summary LIKE '%' || ? || '%'"}
	args := []interface{}{query}

	if opts.EntityType != "" {
		conditions = append(conditions, "indexed_entity_type = ?")
		args = append(args, opts.EntityType)
	}
	if opts.Since != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, opts.Since.UnixNano())
	}
	if len(opts.Categories) > 0 {
		placeholders := make([]string, len(opts.Categories))
		for i, cat := range opts.Categories {
			placeholders[i] = "?"
			args = append(args, cat)
		}
		conditions = append(conditions, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ", ")))
	}

	where := strings.Join(conditions, " AND ")
	sqlQuery := fmt.Sprintf(
		`SELECT %s FROM activity_entries WHERE %s ORDER BY occurred_at DESC LIMIT ?`,
		entryColumns, where)
	queryArgs := append(append([]interface{}{}, args...), opts.Limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("searching activity entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activity_entries WHERE %s", where)
	var totalCount int
	_ = s.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)

	return entries, totalCount, nil
}

// PurgeBefore deletes entries older than cutoff.
func (s *SQLiteStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM activity_entries WHERE occurred_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purging activity entries: %w", err)
	}
	return res.RowsAffected()
}

func appendCommonFilters(conditions []string, args []interface{}, opts QueryOptions) ([]string, []interface{}) {
	if opts.Since != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, opts.Since.UnixNano())
	}
	if opts.Until != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, opts.Until.UnixNano())
	}
	if len(opts.Categories) > 0 {
		placeholders := make([]string, len(opts.Categories))
		for i, cat := range opts.Categories {
			placeholders[i] = "?"
			args = append(args, cat)
		}
		conditions = append(conditions, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ", ")))
	}
	if opts.MinWeight != "" && opts.MinWeight != "info" {
		maxSeverity := WeightSeverity(opts.MinWeight)
		var weightValues []string
		for w, sev := range WeightOrder {
			if sev <= maxSeverity {
				weightValues = append(weightValues, w)
			}
		}
		if len(weightValues) > 0 {
			placeholders := make([]string, len(weightValues))
			for i, wv := range weightValues {
				placeholders[i] = "?"
				args = append(args, wv)
			}
			conditions = append(conditions, fmt.Sprintf("weight IN (%s)", strings.Join(placeholders, ", ")))
		}
	}
	if opts.Cursor != "" {
		// Cursor is the occurred_at timestamp of the last result.
		if cursorTime, err := time.Parse(time.RFC3339Nano, opts.Cursor); err == nil {
			conditions = append(conditions, "occurred_at < ?")
			args = append(args, cursorTime.UnixNano())
		}
	}
	return conditions, args
}

func scanEntries(rows *sql.Rows) ([]types.ActivityEntry, error) {
	var entries []types.ActivityEntry
	for rows.Next() {
		var e types.ActivityEntry
		var occurredAt int64
		var refsJSON string
		var payload sql.NullString
		err := rows.Scan(
			&e.EventID, &e.EventType, &occurredAt, &e.IndexedEntityType, &e.IndexedEntityID,
			&e.EntityRole, &refsJSON, &e.Summary, &e.Category, &e.Weight, &e.Polarity, &e.Actor,
			&payload,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		e.OccurredAt = time.Unix(0, occurredAt)
		if refsJSON != "" {
			_ = json.Unmarshal([]byte(refsJSON), &e.SourceRefs)
		}
		if payload.Valid && payload.String != "" {
			e.Payload = json.RawMessage(payload.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
