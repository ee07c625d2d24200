package repository

import (
	"context"
	"time"

	"github.com/resumeforge/resumeforge/backend/go-services/pkg/logger"
)

// StartJanitor discards sessions idle longer than ttl every interval until ctx
// is done. onExpire, when set, is called with each batch of removed ids.
func StartJanitor(ctx context.Context, repo *MemoryRepo, interval, ttl time.Duration, onExpire func(ids []string)) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				gone := repo.Expire(time.Now().UTC().Add(-ttl))
				if len(gone) == 0 {
					continue
				}
				logger.Infof("janitor: discarded %d idle sessions", len(gone))
				if onExpire != nil {
					onExpire(gone)
				}
			}
		}
	}()
}
