// Package worker holds background loops that run for the life of the server.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/vinpro/dealdesk/internal/activity"
)

// purgeInterval is how often the retention sweep runs. Once an hour keeps the
// table close to the retention boundary without meaningful write pressure.
const purgeInterval = time.Hour

// RunRetention purges activity entries older than retentionDays on a fixed
// interval until ctx is cancelled. One sweep runs immediately at startup.
func RunRetention(ctx context.Context, store activity.Store, retentionDays int) {
	if retentionDays <= 0 {
		retentionDays = 90
	}

	sweep := func() {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		removed, err := store.PurgeBefore(ctx, cutoff)
		if err != nil {
			log.Printf("retention: purge failed: %v", err)
			return
		}
		if removed > 0 {
			log.Printf("retention: purged %d activity entries older than %s", removed, cutoff.Format("2006-01-02"))
		}
	}

	sweep()
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
