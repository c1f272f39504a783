package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/pkg/goerror"
)

func TestCleanup_RemovesOnlyExpired(t *testing.T) {
	f := newFixture(t, "111111", "222222")
	ctx := context.Background()

	_, err := f.uc.Issue(ctx, IssueInput{Email: "old@example.com", UserClass: "live", TTL: time.Second})
	require.NoError(t, err)
	_, err = f.uc.Issue(ctx, IssueInput{Email: "fresh@example.com", UserClass: "live", TTL: time.Hour})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Second)

	removed, err := f.uc.Cleanup(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, err = f.db.FindLatestOTP(ctx, entity.KindSignup, "old@example.com", entity.UserClassLive)
	require.ErrorIs(t, err, goerror.ErrNotFound)

	_, err = f.db.FindLatestOTP(ctx, entity.KindSignup, "fresh@example.com", entity.UserClassLive)
	require.NoError(t, err)
}

func TestCleanup_Empty(t *testing.T) {
	f := newFixture(t)

	removed, err := f.uc.Cleanup(context.Background())
	require.NoError(t, err)
	require.Zero(t, removed)
}
