package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradepass/otpcore/internal/pkg/config"
	"github.com/tradepass/otpcore/internal/pkg/goroutine"
	"go.uber.org/atomic"
)

// RegisterCleanupJob starts the expiry sweeper. It runs off the request path
// on a fixed interval; a failed pass is logged and retried on the next tick.
func RegisterCleanupJob(ctx context.Context, cfg config.Config, routine *goroutine.Manager, uc uc) {
	interval := cfg.GetSecond("modules.otp.cleanup_interval_seconds")
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	var (
		passes  atomic.Int64
		removed atomic.Int64
	)

	routine.Go(ctx, func(pCtx context.Context) error {
		slog.InfoContext(pCtx, "Running job for expired otp cleanup", "interval", interval)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-pCtx.Done():
				slog.InfoContext(pCtx, "stopping expired otp cleanup",
					"passes", passes.Load(), "total_removed", removed.Load())
				return nil

			case <-ticker.C:
				count, err := uc.Cleanup(pCtx)
				if err != nil {
					slog.ErrorContext(pCtx, "expired otp cleanup pass failed", "error", err)
					continue
				}

				passes.Inc()
				removed.Add(count)
				if count > 0 {
					slog.InfoContext(pCtx, "expired otp cleanup pass finished", "removed", count)
				}
			}
		}
	})
}
