package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/pkg/goerror"
)

// lookupOrder is fixed: the signup scope always shadows the account scope.
var lookupOrder = [2]entity.Kind{entity.KindSignup, entity.KindAccount}

type VerifyInput struct {
	Email     string `validate:"required,email"`
	UserClass string `validate:"required,userclass"`
	Code      string `validate:"required,numericcode"`
}

type VerifyOutput struct {
	Kind    entity.Kind
	Account entity.AccountRef
}

// Verify checks the submitted code against the signup scope first, then the
// account scope, and retires the winning record. Every rejection collapses
// into one undifferentiated invalid outcome; the precise reason goes only to
// the audit sink.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	class := entity.UserClassFromString(in.UserClass)

	codeHash, err := s.hmac.Hash(in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	for _, kind := range lookupOrder {
		rec, err := s.repoDB.FindValidOTP(ctx, kind, in.Email, class, string(codeHash), now)
		if errors.Is(err, goerror.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo find valid otp", "email", in.Email, "user_class", in.UserClass, "kind", kind.String(), "error", err)
			return nil, goerror.NewServer(err)
		}

		if err := s.repoDB.MarkOTPVerified(ctx, rec.ID, now); err != nil {
			if errors.Is(err, goerror.ErrConflict) || errors.Is(err, goerror.ErrNotFound) {
				// a concurrent verifier won the race
				return nil, s.rejected(ctx, in.Email, class, entity.FailureAlreadyUsed)
			}
			slog.ErrorContext(ctx, "failed to repo mark otp verified", "record_id", rec.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		if err := s.repoMessaging.PublishOTPVerified(ctx, OTPVerifiedEvent{
			RecordID:  rec.ID,
			Kind:      rec.Kind,
			Email:     rec.Email,
			UserClass: rec.UserClass,
			Account:   rec.Account,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp verified", "record_id", rec.ID, "error", err)
		}

		return &VerifyOutput{Kind: rec.Kind, Account: rec.Account}, nil
	}

	reason := s.classifyFailure(ctx, in.Email, class, now)
	return nil, s.rejected(ctx, in.Email, class, reason)
}

// classifyFailure inspects the freshest scope record (validity-free) so the
// audit trail can distinguish what the caller must not.
func (s *Usecase) classifyFailure(ctx context.Context, email string, class entity.UserClass, now time.Time) entity.FailureReason {
	for _, kind := range lookupOrder {
		rec, err := s.repoDB.FindLatestOTP(ctx, kind, email, class)
		if errors.Is(err, goerror.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo find latest otp", "email", email, "user_class", class.String(), "kind", kind.String(), "error", err)
			continue
		}

		switch {
		case rec.Verified:
			return entity.FailureAlreadyUsed
		case !now.Before(rec.ExpiresAt):
			return entity.FailureExpired
		default:
			return entity.FailureCodeMismatch
		}
	}

	return entity.FailureNotIssued
}

// rejected emits the audit event and returns the single invalid outcome.
func (s *Usecase) rejected(ctx context.Context, email string, class entity.UserClass, reason entity.FailureReason) error {
	if err := s.repoMessaging.PublishOTPVerifyFailed(ctx, OTPVerifyFailedEvent{
		Email:     email,
		UserClass: class,
		Reason:    reason,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp verify failed", "email", email, "error", err)
	}

	return goerror.NewBusiness("Invalid or expired code", goerror.CodeUnauthorized)
}
