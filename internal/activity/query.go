// Package activity provides the activity store interface and implementations
// for the dealership pulse feed.
package activity

import "time"

// WeightOrder maps entry weights to numeric severity (lower = more severe).
var WeightOrder = map[string]int{
	"critical": 1,
	"major":    2,
	"minor":    3,
	"info":     4,
}

// WeightSeverity returns the numeric severity for a weight, defaulting to the
// least severe for unknown values.
func WeightSeverity(w string) int {
	if s, ok := WeightOrder[w]; ok {
		return s
	}
	return WeightOrder["info"]
}

// IsAtLeastWeight reports whether w is at least as severe as min.
func IsAtLeastWeight(w, min string) bool {
	return WeightSeverity(w) <= WeightSeverity(min)
}

// QueryOptions controls filtering and pagination for entity activity queries.
type QueryOptions struct {
	Since      *time.Time // default: 90 days ago, matching the retention window
	Until      *time.Time // default: now
	Categories []string   // filter to specific feed categories
	MinWeight  string     // minimum weight threshold (default: "info")
	Limit      int        // max results (default: 100, max: 500)
	Cursor     string     // cursor for pagination
}

// SearchOptions controls filtering for full-text activity search.
type SearchOptions struct {
	EntityType string     // filter to specific entity type
	Since      *time.Time // filter by time
	Categories []string   // filter to specific feed categories
	Limit      int        // max results (default: 20)
}

// DefaultQueryOptions returns QueryOptions with sensible defaults.
func DefaultQueryOptions() QueryOptions {
	since := time.Now().AddDate(0, 0, -90)
	now := time.Now()
	return QueryOptions{
		Since:     &since,
		Until:     &now,
		MinWeight: "info",
		Limit:     100,
	}
}

// DefaultSearchOptions returns SearchOptions with sensible defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit: 20,
	}
}
