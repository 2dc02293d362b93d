package web

import (
	"context"
	"time"

	"github.com/kasamhealthcare/clinic-web/internal/backend"
	"github.com/kasamhealthcare/clinic-web/pkg/logging"
)

// AutoRefreshReviews periodically asks the backend to refetch its review
// cache so the home page keeps serving recent reviews. Refresh failures are
// logged at warn and never surface to visitors. Blocks until ctx is
// cancelled; run it in its own goroutine.
func AutoRefreshReviews(ctx context.Context, api *backend.Client, interval time.Duration, logger *logging.Logger) {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := api.RefreshReviews(callCtx); err != nil {
				logger.Warn("review refresh failed", "error", err)
			}
			cancel()
		}
	}
}
