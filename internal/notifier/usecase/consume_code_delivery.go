package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"github.com/tradepass/otpcore/internal/notifier/entity"
	"github.com/tradepass/otpcore/internal/pkg/mail"
)

// emailBodyTemplate is the HTML body for passcode delivery. Template data
// comes from baseEmailTemplateData plus the passcode fields.
const emailBodyTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<p>Hello,</p>
	<p>Your one-time passcode for your {{.user_class}} account is:</p>
	<p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{.code}}</p>
	<p>This code expires in {{.expiry_minutes}} minutes. If you did not request it, you can ignore this email.</p>
	<p>Need help? Contact us at {{.support_email}}.</p>
	<p>&copy; {{.year}} {{.company_name}}</p>
</body>
</html>`

type ConsumeCodeDeliveryInput struct {
	Email     string `validate:"required,email"`
	UserClass string `validate:"required,userclass"`
	Code      string `validate:"required,numericcode"`
	ExpiresAt int64  `validate:"required,gt=0"`
}

func (s *Usecase) ConsumeCodeDelivery(ctx context.Context, in ConsumeCodeDeliveryInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeCodeDelivery")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	subject := s.cfg.GetString("modules.notifier.subject")
	logID := s.uid.Generate()

	dl := entity.CreateDeliveryLog{
		ID:        logID,
		Email:     in.Email,
		UserClass: in.UserClass,
		Subject:   subject,
		Status:    entity.DeliveryStatusQueued,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repoDB.CreateDeliveryLog(ctx, dl); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "email", in.Email, "error", err)
		return err
	}

	expiresIn := time.Unix(in.ExpiresAt, 0).Sub(s.clock.Now())
	minutes := int(expiresIn.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	data := s.baseEmailTemplateData()
	data["code"] = in.Code
	data["user_class"] = in.UserClass
	data["expiry_minutes"] = minutes

	body, err := s.renderTemplate("passcode_body", emailBodyTemplate, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render passcode email body", "log_id", logID, "error", err)
		return err
	}

	msg := mail.Message{
		To:       []string{in.Email},
		Bcc:      lo.Uniq(s.cfg.GetArray("modules.notifier.audit_bcc")),
		Subject:  subject,
		HTMLBody: body,
	}

	backoff := retry.WithMaxRetries(2, retry.NewConstant(2*time.Second))
	mailErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.repoMail.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if mailErr == nil {
		deliveredAt := s.clock.Now()
		up := entity.UpdateDeliveryLog{
			ID:          logID,
			Status:      entity.DeliveryStatusSent,
			DeliveredAt: &deliveredAt,
		}
		if err := s.repoDB.UpdateDeliveryLogStatus(ctx, up); err != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status sent", "log_id", logID, "error", err)
		}
		return nil
	}

	lastErr := mailErr.Error()
	up := entity.UpdateDeliveryLog{
		ID:        logID,
		Status:    entity.DeliveryStatusFailed,
		LastError: &lastErr,
	}
	if err := s.repoDB.UpdateDeliveryLogStatus(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status failed", "log_id", logID, "error", err)
	}

	slog.ErrorContext(ctx, "failed to send passcode email", "log_id", logID, "email", in.Email, "error", mailErr)
	return nil
}
