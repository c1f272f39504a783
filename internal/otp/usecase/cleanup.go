package usecase

import (
	"context"
	"log/slog"

	"github.com/tradepass/otpcore/internal/pkg/goerror"
)

// Cleanup removes every record whose expiry has already passed and returns
// the count. It never runs on the request path; failures are logged by the
// sweeper and retried on the next pass.
func (s *Usecase) Cleanup(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "Cleanup")
	defer span.End()

	removed, err := s.repoDB.DeleteExpiredOTP(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired otp", "error", err)
		return 0, goerror.NewServer(err)
	}

	return removed, nil
}
