package otp

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tradepass/otpcore/internal/otp/inbound"
	"github.com/tradepass/otpcore/internal/otp/outbound/db"
	"github.com/tradepass/otpcore/internal/otp/outbound/mq"
	"github.com/tradepass/otpcore/internal/otp/usecase"
	"github.com/tradepass/otpcore/internal/pkg/clock"
	"github.com/tradepass/otpcore/internal/pkg/codegen"
	"github.com/tradepass/otpcore/internal/pkg/config"
	"github.com/tradepass/otpcore/internal/pkg/goroutine"
	"github.com/tradepass/otpcore/internal/pkg/hash"
	"github.com/tradepass/otpcore/internal/pkg/idempotency"
	"github.com/tradepass/otpcore/internal/pkg/instrument"
	"github.com/tradepass/otpcore/internal/pkg/messaging"
	"github.com/tradepass/otpcore/internal/pkg/router"
	"github.com/tradepass/otpcore/internal/pkg/uid"
	"github.com/tradepass/otpcore/internal/pkg/validator"
)

type Dependency struct {
	Ctx           context.Context            `validate:"required"`
	DBConn        *pgxpool.Pool              `validate:"required"`
	Goroutine     *goroutine.Manager         `validate:"required"`
	Router        *router.Router             `validate:"required"`
	Idempotency   idempotency.Idempotency    `validate:"required"`
	Messaging     messaging.Messaging        `validate:"required"`
	Config        config.Config              `validate:"required"`
	Instrument    instrument.Instrumentation `validate:"required"`
	UID           uid.NumberID               `validate:"required"`
	HMAC          hash.Hash                  `validate:"required"`
	CodeGenerator codegen.Generator          `validate:"required"`
	Clock         clock.Clocker              `validate:"required"`
	Validator     validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbOTP := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbOTP,
		RepoMessaging: repoMsg,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		CodeGenerator: dep.CodeGenerator,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config)
	inbound.RegisterCleanupJob(dep.Ctx, dep.Config, dep.Goroutine, uc)

	return nil
}
