package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepass/otpcore/internal/otp/entity"
)

func issueFor(t *testing.T, f *fixture, email, class string) *IssueOutput {
	t.Helper()

	out, err := f.uc.Issue(context.Background(), IssueInput{
		Email:     email,
		UserClass: class,
		TTL:       5 * time.Minute,
	})
	require.NoError(t, err)
	return out
}

func TestVerify_Success(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	issueFor(t, f, "alice@example.com", "live")

	out, err := f.uc.Verify(ctx, VerifyInput{Email: "ALICE@example.com", UserClass: "live", Code: "123456"})
	require.NoError(t, err)
	require.Equal(t, entity.KindSignup, out.Kind)
	require.True(t, out.Account.IsZero())

	require.Len(t, f.mq.verified, 1)
	require.Empty(t, f.mq.failed)

	rec, err := f.db.FindLatestOTP(ctx, entity.KindSignup, "alice@example.com", entity.UserClassLive)
	require.NoError(t, err)
	require.True(t, rec.Verified)
	require.NotNil(t, rec.VerifiedAt)
}

func TestVerify_SingleUse(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	issueFor(t, f, "alice@example.com", "live")

	_, err := f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "123456"})
	require.NoError(t, err)

	_, err = f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "123456"})
	requireInvalidCode(t, err)
	require.Equal(t, []entity.FailureReason{entity.FailureAlreadyUsed}, f.mq.failureReasons())
}

func TestVerify_Expired(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	_, err := f.uc.Issue(ctx, IssueInput{Email: "alice@example.com", UserClass: "live", TTL: time.Second})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Second)

	_, err = f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "123456"})
	requireInvalidCode(t, err)
	require.Equal(t, []entity.FailureReason{entity.FailureExpired}, f.mq.failureReasons())
}

func TestVerify_CodeMismatch(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	issueFor(t, f, "alice@example.com", "live")

	_, err := f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "654321"})
	requireInvalidCode(t, err)
	require.Equal(t, []entity.FailureReason{entity.FailureCodeMismatch}, f.mq.failureReasons())
}

func TestVerify_NotIssued(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Verify(context.Background(), VerifyInput{Email: "nobody@example.com", UserClass: "live", Code: "123456"})
	requireInvalidCode(t, err)
	require.Equal(t, []entity.FailureReason{entity.FailureNotIssued}, f.mq.failureReasons())
}

func TestVerify_ScopeIsolation(t *testing.T) {
	f := newFixture(t, "111111", "222222")
	ctx := context.Background()

	issueFor(t, f, "alice@example.com", "live")
	issueFor(t, f, "alice@example.com", "demo")

	// the demo code must not unlock the live scope
	_, err := f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "222222"})
	requireInvalidCode(t, err)

	_, err = f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "demo", Code: "222222"})
	require.NoError(t, err)

	_, err = f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "111111"})
	require.NoError(t, err)
}

func TestVerify_SignupShadowsAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// same code hash in both scopes; the signup record must win
	codeHash, err := f.hmac.Hash("123456")
	require.NoError(t, err)

	now := f.clock.Now()
	accountID := int64(9)
	require.NoError(t, f.db.ReplaceOTP(ctx, entity.Record{
		ID: 1, Kind: entity.KindSignup, Email: "alice@example.com", UserClass: entity.UserClassLive,
		CodeHash: string(codeHash), CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
	}))
	require.NoError(t, f.db.ReplaceOTP(ctx, entity.Record{
		ID: 2, Kind: entity.KindAccount, Email: "alice@example.com", UserClass: entity.UserClassLive,
		CodeHash: string(codeHash), Account: entity.AccountRef{AccountID: &accountID},
		CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute),
	}))

	out, err := f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "123456"})
	require.NoError(t, err)
	require.Equal(t, entity.KindSignup, out.Kind)
	require.True(t, out.Account.IsZero())

	// the account record stays untouched
	rec, err := f.db.FindLatestOTP(ctx, entity.KindAccount, "alice@example.com", entity.UserClassLive)
	require.NoError(t, err)
	require.False(t, rec.Verified)
}

func TestVerify_AccountScopeReturnsReference(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	accountID := int64(42)
	f.db.setResolution("bob@example.com", entity.UserClassLive, entity.Resolution{
		State:   entity.ResolutionInactiveAccount,
		Account: entity.AccountRef{AccountID: &accountID},
	})
	issueFor(t, f, "bob@example.com", "live")

	out, err := f.uc.Verify(ctx, VerifyInput{Email: "bob@example.com", UserClass: "live", Code: "123456"})
	require.NoError(t, err)
	require.Equal(t, entity.KindAccount, out.Kind)
	require.NotNil(t, out.Account.AccountID)
	require.Equal(t, accountID, *out.Account.AccountID)
}

func TestVerify_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	issueFor(t, f, "alice@example.com", "live")

	const attempts = 50
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Verify(ctx, VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "123456"})
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			requireInvalidCode(t, err)
		}
	}
	require.Equal(t, 1, wins)
	require.Len(t, f.mq.verified, 1)
}

func TestVerify_MalformedCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Verify(context.Background(), VerifyInput{Email: "alice@example.com", UserClass: "live", Code: "12ab56"})
	require.Error(t, err)
	// malformed input is rejected before any lookup or audit event
	require.Empty(t, f.mq.failed)
}
