package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/otp/outbound/db"
	"github.com/tradepass/otpcore/internal/pkg/goerror"
	"github.com/tradepass/otpcore/internal/pkg/instrument"
)

const testSchema = `
CREATE TABLE otp_codes (
    id              BIGINT PRIMARY KEY,
    kind            SMALLINT NOT NULL,
    email           TEXT NOT NULL,
    user_class      SMALLINT NOT NULL,
    code_hash       TEXT NOT NULL,
    account_id      BIGINT NULL,
    demo_account_id BIGINT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at      TIMESTAMPTZ NOT NULL,
    verified        BOOLEAN NOT NULL DEFAULT FALSE,
    verified_at     TIMESTAMPTZ NULL,
    UNIQUE (kind, email, user_class)
);
CREATE INDEX idx_otp_codes_expires_at ON otp_codes (expires_at);

CREATE TABLE accounts (
    id     BIGINT PRIMARY KEY,
    email  TEXT NOT NULL UNIQUE,
    status SMALLINT NOT NULL
);

CREATE TABLE demo_accounts (
    id     BIGINT PRIMARY KEY,
    email  TEXT NOT NULL UNIQUE,
    status SMALLINT NOT NULL
);
`

func setupDB(t *testing.T) (*db.DB, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := testcontainers.NewDockerClientWithOpts(ctx); err != nil {
		t.Skipf("skipping integration test because Docker is unavailable: %v", err)
	}

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("otpcore"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(wait.ForAll(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort(nat.Port("5432/tcp")),
		)),
	)
	require.NoError(t, err, "failed to start postgres container")
	testcontainers.CleanupContainer(t, container)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, testSchema)
	require.NoError(t, err)

	return db.NewDB(pool, instrument.NewNoop()), pool
}

func record(id int64, kind entity.Kind, email string, class entity.UserClass, codeHash string, now time.Time, ttl time.Duration) entity.Record {
	return entity.Record{
		ID:        id,
		Kind:      kind,
		Email:     email,
		UserClass: class,
		CodeHash:  codeHash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestDB_ReplaceAndFind(t *testing.T) {
	store, _ := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := record(1, entity.KindSignup, "alice@example.com", entity.UserClassLive, "hash-1", now, 5*time.Minute)
	require.NoError(t, store.ReplaceOTP(ctx, rec))

	got, err := store.FindValidOTP(ctx, entity.KindSignup, "alice@example.com", entity.UserClassLive, "hash-1", now)
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
	require.False(t, got.Verified)
	require.True(t, got.Account.IsZero())

	// replacing the scope invalidates the prior hash
	rec2 := record(2, entity.KindSignup, "alice@example.com", entity.UserClassLive, "hash-2", now, 5*time.Minute)
	require.NoError(t, store.ReplaceOTP(ctx, rec2))

	_, err = store.FindValidOTP(ctx, entity.KindSignup, "alice@example.com", entity.UserClassLive, "hash-1", now)
	require.ErrorIs(t, err, goerror.ErrNotFound)

	got, err = store.FindValidOTP(ctx, entity.KindSignup, "alice@example.com", entity.UserClassLive, "hash-2", now)
	require.NoError(t, err)
	require.Equal(t, rec2.ID, got.ID)
}

func TestDB_FindValidOTPExcludesExpiredAndVerified(t *testing.T) {
	store, _ := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := record(1, entity.KindSignup, "bob@example.com", entity.UserClassLive, "hash-1", now, time.Minute)
	require.NoError(t, store.ReplaceOTP(ctx, rec))

	_, err := store.FindValidOTP(ctx, entity.KindSignup, "bob@example.com", entity.UserClassLive, "hash-1", now.Add(2*time.Minute))
	require.ErrorIs(t, err, goerror.ErrNotFound)

	require.NoError(t, store.MarkOTPVerified(ctx, rec.ID, now))
	_, err = store.FindValidOTP(ctx, entity.KindSignup, "bob@example.com", entity.UserClassLive, "hash-1", now)
	require.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_MarkOTPVerifiedIsSingleUse(t *testing.T) {
	store, _ := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec := record(1, entity.KindAccount, "carol@example.com", entity.UserClassDemo, "hash-1", now, 5*time.Minute)
	require.NoError(t, store.ReplaceOTP(ctx, rec))

	require.NoError(t, store.MarkOTPVerified(ctx, rec.ID, now))
	require.ErrorIs(t, store.MarkOTPVerified(ctx, rec.ID, now), goerror.ErrConflict)

	got, err := store.FindLatestOTP(ctx, entity.KindAccount, "carol@example.com", entity.UserClassDemo)
	require.NoError(t, err)
	require.True(t, got.Verified)
	require.NotNil(t, got.VerifiedAt)
}

func TestDB_DeleteExpiredOTP(t *testing.T) {
	store, _ := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.ReplaceOTP(ctx, record(1, entity.KindSignup, "old@example.com", entity.UserClassLive, "h", now.Add(-10*time.Minute), time.Minute)))
	require.NoError(t, store.ReplaceOTP(ctx, record(2, entity.KindSignup, "fresh@example.com", entity.UserClassLive, "h", now, time.Hour)))

	removed, err := store.DeleteExpiredOTP(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	_, err = store.FindLatestOTP(ctx, entity.KindSignup, "old@example.com", entity.UserClassLive)
	require.ErrorIs(t, err, goerror.ErrNotFound)
}

func TestDB_ResolveSignupIdentity(t *testing.T) {
	store, pool := setupDB(t)
	ctx := context.Background()

	res, err := store.ResolveSignupIdentity(ctx, "nobody@example.com", entity.UserClassLive)
	require.NoError(t, err)
	require.Equal(t, entity.ResolutionNoAccount, res.State)

	_, err = pool.Exec(ctx, `INSERT INTO accounts (id, email, status) VALUES (10, 'inactive@example.com', 1), (11, 'active@example.com', 2)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO demo_accounts (id, email, status) VALUES (20, 'inactive@example.com', 2)`)
	require.NoError(t, err)

	res, err = store.ResolveSignupIdentity(ctx, "inactive@example.com", entity.UserClassLive)
	require.NoError(t, err)
	require.Equal(t, entity.ResolutionInactiveAccount, res.State)
	require.NotNil(t, res.Account.AccountID)
	require.Equal(t, int64(10), *res.Account.AccountID)

	res, err = store.ResolveSignupIdentity(ctx, "active@example.com", entity.UserClassLive)
	require.NoError(t, err)
	require.Equal(t, entity.ResolutionActiveAccount, res.State)

	// the demo table is a separate population
	res, err = store.ResolveSignupIdentity(ctx, "inactive@example.com", entity.UserClassDemo)
	require.NoError(t, err)
	require.Equal(t, entity.ResolutionActiveAccount, res.State)
	require.NotNil(t, res.Account.DemoAccountID)
	require.Equal(t, int64(20), *res.Account.DemoAccountID)
}
