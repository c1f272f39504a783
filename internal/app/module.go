package app

import (
	"log/slog"
	"os"

	"github.com/tradepass/otpcore/internal/notifier"
	"github.com/tradepass/otpcore/internal/otp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.otp.enabled") {
		if err := otp.New(otp.Dependency{
			Ctx:           a.ctx,
			DBConn:        a.dbConn,
			Goroutine:     a.goroutine,
			Router:        a.router,
			Idempotency:   a.idemp,
			Messaging:     a.messaging,
			Config:        a.config,
			Instrument:    a.ins,
			UID:           a.uid,
			HMAC:          a.hmac,
			CodeGenerator: a.codegen,
			Clock:         a.clock,
			Validator:     a.validator,
		}); err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notifier.enabled") {
		if err := notifier.New(notifier.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Mail:       a.mail,
		}); err != nil {
			slog.Error("failed to init module notifier", "error", err)
			os.Exit(1)
		}
	}
}
