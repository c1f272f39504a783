package notifier

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tradepass/otpcore/internal/notifier/inbound"
	"github.com/tradepass/otpcore/internal/notifier/outbound/db"
	"github.com/tradepass/otpcore/internal/notifier/outbound/email"
	"github.com/tradepass/otpcore/internal/notifier/usecase"
	"github.com/tradepass/otpcore/internal/pkg/clock"
	"github.com/tradepass/otpcore/internal/pkg/config"
	"github.com/tradepass/otpcore/internal/pkg/goroutine"
	"github.com/tradepass/otpcore/internal/pkg/instrument"
	"github.com/tradepass/otpcore/internal/pkg/mail"
	"github.com/tradepass/otpcore/internal/pkg/messaging"
	"github.com/tradepass/otpcore/internal/pkg/uid"
	"github.com/tradepass/otpcore/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	DBConn     *pgxpool.Pool              `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbNotif := db.NewDB(dep.DBConn, dep.Instrument)
	repoMail := email.New(dep.Mail, dep.Instrument)

	uc := usecase.NewNotifier(usecase.Dependency{
		RepoDB:     dbNotif,
		RepoMail:   repoMail,
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return nil
}
