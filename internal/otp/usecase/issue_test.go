package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/pkg/goerror"
)

func TestIssue_NewSignup(t *testing.T) {
	f := newFixture(t, "123456")

	out, err := f.uc.Issue(context.Background(), IssueInput{
		Email:     "Alice@Example.COM ",
		UserClass: "live",
		TTL:       5 * time.Minute,
	})
	require.NoError(t, err)
	require.Equal(t, "123456", out.Code)
	require.Equal(t, f.clock.Now().Add(5*time.Minute), out.ExpiresAt)

	rec, err := f.db.FindLatestOTP(context.Background(), entity.KindSignup, "alice@example.com", entity.UserClassLive)
	require.NoError(t, err)
	require.Equal(t, entity.KindSignup, rec.Kind)
	require.True(t, f.hmac.Verify(rec.CodeHash, "123456"))
	require.NotEqual(t, "123456", rec.CodeHash)

	require.Len(t, f.mq.issued, 1)
	require.Len(t, f.mq.deliveries, 1)
	require.Equal(t, "123456", f.mq.deliveries[0].Code)
}

func TestIssue_InactiveAccountBindsReference(t *testing.T) {
	f := newFixture(t, "654321")

	accountID := int64(42)
	f.db.setResolution("bob@example.com", entity.UserClassLive, entity.Resolution{
		State:   entity.ResolutionInactiveAccount,
		Account: entity.AccountRef{AccountID: &accountID},
	})

	_, err := f.uc.Issue(context.Background(), IssueInput{
		Email:     "bob@example.com",
		UserClass: "live",
		TTL:       5 * time.Minute,
	})
	require.NoError(t, err)

	rec, err := f.db.FindLatestOTP(context.Background(), entity.KindAccount, "bob@example.com", entity.UserClassLive)
	require.NoError(t, err)
	require.NotNil(t, rec.Account.AccountID)
	require.Equal(t, accountID, *rec.Account.AccountID)
	require.Nil(t, rec.Account.DemoAccountID)
}

func TestIssue_ActiveAccountConflicts(t *testing.T) {
	f := newFixture(t)

	accountID := int64(7)
	f.db.setResolution("carol@example.com", entity.UserClassDemo, entity.Resolution{
		State:   entity.ResolutionActiveAccount,
		Account: entity.AccountRef{DemoAccountID: &accountID},
	})

	_, err := f.uc.Issue(context.Background(), IssueInput{
		Email:     "carol@example.com",
		UserClass: "demo",
		TTL:       5 * time.Minute,
	})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, goerror.CodeConflict, gerr.Code())
	require.Empty(t, f.mq.issued)
}

func TestIssue_ReplacesPriorCode(t *testing.T) {
	f := newFixture(t, "111111", "222222")
	ctx := context.Background()

	in := IssueInput{Email: "dave@example.com", UserClass: "live", TTL: 5 * time.Minute}

	_, err := f.uc.Issue(ctx, in)
	require.NoError(t, err)
	_, err = f.uc.Issue(ctx, in)
	require.NoError(t, err)

	// only the latest code wins
	_, err = f.uc.Verify(ctx, VerifyInput{Email: in.Email, UserClass: in.UserClass, Code: "111111"})
	requireInvalidCode(t, err)

	out, err := f.uc.Verify(ctx, VerifyInput{Email: in.Email, UserClass: in.UserClass, Code: "222222"})
	require.NoError(t, err)
	require.Equal(t, entity.KindSignup, out.Kind)
}

func TestIssue_ForcedCodeDisabledByDefault(t *testing.T) {
	f := newFixture(t, "999999")

	out, err := f.uc.Issue(context.Background(), IssueInput{
		Email:      "eve@example.com",
		UserClass:  "live",
		TTL:        5 * time.Minute,
		ForcedCode: "424242",
	})
	require.NoError(t, err)
	require.Equal(t, "999999", out.Code)
}

func TestIssue_ForcedCodeHonoredWhenAllowed(t *testing.T) {
	f := newFixture(t, "999999")
	f.cfg.bools["modules.otp.allow_forced_code"] = true

	out, err := f.uc.Issue(context.Background(), IssueInput{
		Email:      "eve@example.com",
		UserClass:  "live",
		TTL:        5 * time.Minute,
		ForcedCode: "424242",
	})
	require.NoError(t, err)
	require.Equal(t, "424242", out.Code)

	_, err = f.uc.Verify(context.Background(), VerifyInput{Email: "eve@example.com", UserClass: "live", Code: "424242"})
	require.NoError(t, err)
}

func TestIssue_IdempotencyKeyDeduplicates(t *testing.T) {
	f := newFixture(t, "123456")
	ctx := context.Background()

	in := IssueInput{
		Email:          "frank@example.com",
		UserClass:      "live",
		TTL:            5 * time.Minute,
		IdempotencyKey: "req-1",
	}

	_, err := f.uc.Issue(ctx, in)
	require.NoError(t, err)

	_, err = f.uc.Issue(ctx, in)
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, goerror.CodeConflict, gerr.Code())
	require.Equal(t, "Request already processed", gerr.Msg())

	require.Len(t, f.mq.issued, 1)
}

func TestIssue_InvalidUserClass(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Issue(context.Background(), IssueInput{
		Email:     "gina@example.com",
		UserClass: "staging",
		TTL:       5 * time.Minute,
	})

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, goerror.TypeValidation, gerr.Type())
}

func TestIssue_PublishFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t, "123456")
	f.mq.failWith = context.DeadlineExceeded

	out, err := f.uc.Issue(context.Background(), IssueInput{
		Email:     "henry@example.com",
		UserClass: "live",
		TTL:       5 * time.Minute,
	})
	require.NoError(t, err)
	require.Equal(t, "123456", out.Code)
}
