package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/pkg/goerror"
	"github.com/tradepass/otpcore/internal/pkg/idempotency"
)

type IssueInput struct {
	Email     string `validate:"required,email"`
	UserClass string `validate:"required,userclass"`

	// TTL bounds the code's validity window.
	TTL time.Duration `validate:"required"`

	// ForcedCode overrides generation for test/ops environments. Honored
	// only when modules.otp.allow_forced_code is set.
	ForcedCode string

	// IdempotencyKey deduplicates retried requests when the client sends
	// X-Idempotency-Key.
	IdempotencyKey string
}

type IssueOutput struct {
	Code      string
	ExpiresAt time.Time
}

func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" {
		return s.issue(ctx, in)
	}

	var out *IssueOutput
	err := s.idemp.Exec(ctx, "otp:issue:"+in.IdempotencyKey, func(ctx context.Context) error {
		var issueErr error
		out, issueErr = s.issue(ctx, in)
		return issueErr
	}, idempotency.WithLockDuration(in.TTL), idempotency.WithStateTTL(in.TTL))
	if errors.Is(err, idempotency.ErrAlreadyInProgress) || errors.Is(err, idempotency.ErrAlreadyCompleted) {
		return nil, goerror.NewBusiness("Request already processed", goerror.CodeConflict)
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Usecase) issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	class := entity.UserClassFromString(in.UserClass)

	resolution, err := s.repoDB.ResolveSignupIdentity(ctx, in.Email, class)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo resolve signup identity", "email", in.Email, "user_class", in.UserClass, "error", err)
		return nil, goerror.NewServer(err)
	}

	kind := entity.KindSignup
	var account entity.AccountRef
	switch resolution.State {
	case entity.ResolutionActiveAccount:
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	case entity.ResolutionInactiveAccount:
		kind = entity.KindAccount
		account = resolution.Account
	case entity.ResolutionNoAccount:
		// brand-new signup
	default:
		slog.ErrorContext(ctx, "unknown signup identity resolution", "email", in.Email, "user_class", in.UserClass)
		return nil, goerror.NewServer(errors.New("otp: unknown identity resolution"))
	}

	code := in.ForcedCode
	if code != "" && !s.cfg.GetBool("modules.otp.allow_forced_code") {
		slog.WarnContext(ctx, "forced code rejected, override is disabled", "email", in.Email)
		code = ""
	}
	if code == "" {
		code, err = s.codegen.Generate()
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate code", "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	codeHash, err := s.hmac.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	rec := entity.Record{
		ID:        s.uid.Generate(),
		Kind:      kind,
		Email:     in.Email,
		UserClass: class,
		CodeHash:  string(codeHash),
		Account:   account,
		CreatedAt: now,
		ExpiresAt: now.Add(in.TTL),
	}

	if err := s.repoDB.ReplaceOTP(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo replace otp", "email", in.Email, "user_class", in.UserClass, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		RecordID:  rec.ID,
		Kind:      rec.Kind,
		Email:     rec.Email,
		UserClass: rec.UserClass,
		ExpiresAt: rec.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "record_id", rec.ID, "error", err)
	}

	if err := s.repoMessaging.PublishCodeDelivery(ctx, CodeDeliveryEvent{
		Email:     rec.Email,
		UserClass: rec.UserClass,
		Code:      code,
		ExpiresAt: rec.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish code delivery", "record_id", rec.ID, "error", err)
	}

	return &IssueOutput{Code: code, ExpiresAt: rec.ExpiresAt}, nil
}
