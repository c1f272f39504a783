package idempotency_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/tradepass/otpcore/internal/pkg/idempotency"
)

func setupClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
		t.Skipf("skipping integration test because Docker is unavailable: %v", err)
	}

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	testcontainers.CleanupContainer(t, container)

	connStr, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(connStr)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestExec_RunsOnce(t *testing.T) {
	client := setupClient(t)
	tracker := idempotency.New(client)
	ctx := context.Background()

	var runs int
	fn := func(context.Context) error {
		runs++
		return nil
	}

	require.NoError(t, tracker.Exec(ctx, "key-1", fn, idempotency.WithLockDuration(time.Minute), idempotency.WithStateTTL(time.Minute)))
	require.Equal(t, 1, runs)

	err := tracker.Exec(ctx, "key-1", fn)
	require.ErrorIs(t, err, idempotency.ErrAlreadyCompleted)
	require.Equal(t, 1, runs)
}

func TestExec_FailureIsSticky(t *testing.T) {
	client := setupClient(t)
	tracker := idempotency.New(client)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tracker.Exec(ctx, "key-2", func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	err = tracker.Exec(ctx, "key-2", func(context.Context) error { return nil })
	require.ErrorIs(t, err, idempotency.ErrAlreadyFailed)
}

func TestAcquire_InProgress(t *testing.T) {
	client := setupClient(t)
	tracker := idempotency.New(client)
	ctx := context.Background()

	state, err := tracker.Acquire(ctx, "key-3", time.Minute)
	require.NoError(t, err)
	require.Equal(t, idempotency.StateNone, state)

	state, err = tracker.Acquire(ctx, "key-3", time.Minute)
	require.NoError(t, err)
	require.Equal(t, idempotency.StateInProgress, state)
}
