package usecase

import (
	"context"
	"time"

	"github.com/tradepass/otpcore/internal/otp/entity"
	"github.com/tradepass/otpcore/internal/pkg/clock"
	"github.com/tradepass/otpcore/internal/pkg/codegen"
	"github.com/tradepass/otpcore/internal/pkg/config"
	"github.com/tradepass/otpcore/internal/pkg/hash"
	"github.com/tradepass/otpcore/internal/pkg/idempotency"
	"github.com/tradepass/otpcore/internal/pkg/instrument"
	"github.com/tradepass/otpcore/internal/pkg/uid"
	"github.com/tradepass/otpcore/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type OTPIssuedEvent struct {
	RecordID  int64
	Kind      entity.Kind
	Email     string
	UserClass entity.UserClass
	ExpiresAt time.Time
}

type OTPVerifiedEvent struct {
	RecordID  int64
	Kind      entity.Kind
	Email     string
	UserClass entity.UserClass
	Account   entity.AccountRef
}

type OTPVerifyFailedEvent struct {
	Email     string
	UserClass entity.UserClass
	Reason    entity.FailureReason
}

type CodeDeliveryEvent struct {
	Email     string
	UserClass entity.UserClass
	Code      string
	ExpiresAt time.Time
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPVerified(ctx context.Context, msg OTPVerifiedEvent) error
	PublishOTPVerifyFailed(ctx context.Context, msg OTPVerifyFailedEvent) error
	PublishCodeDelivery(ctx context.Context, msg CodeDeliveryEvent) error
}

type repoDB interface {
	// ReplaceOTP atomically swaps the (kind, email, user class) scope row
	// for the given record, invalidating any prior code for the scope.
	ReplaceOTP(ctx context.Context, rec entity.Record) error

	// FindValidOTP returns the scope record iff it matches the code hash,
	// is unverified, and expires after now.
	FindValidOTP(ctx context.Context, kind entity.Kind, email string, class entity.UserClass, codeHash string, now time.Time) (*entity.Record, error)

	// FindLatestOTP returns the scope record regardless of validity.
	FindLatestOTP(ctx context.Context, kind entity.Kind, email string, class entity.UserClass) (*entity.Record, error)

	// MarkOTPVerified flips the verified flag; goerror.ErrConflict when a
	// concurrent verifier already won.
	MarkOTPVerified(ctx context.Context, id int64, at time.Time) error

	// DeleteExpiredOTP removes all records with expires_at <= before.
	DeleteExpiredOTP(ctx context.Context, before time.Time) (int64, error)

	// ResolveSignupIdentity reports whether an account already exists for
	// the email within the user class.
	ResolveSignupIdentity(ctx context.Context, email string, class entity.UserClass) (*entity.Resolution, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	codegen       codegen.Generator
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	CodeGenerator codegen.Generator
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		codegen:       dep.CodeGenerator,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}
