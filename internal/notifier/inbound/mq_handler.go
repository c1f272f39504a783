package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tradepass/otpcore/internal/notifier/usecase"
	"github.com/tradepass/otpcore/internal/pkg/instrument"
	"github.com/tradepass/otpcore/internal/pkg/messaging"
	"github.com/tradepass/otpcore/internal/pkg/uid"
	"github.com/tradepass/otpcore/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) CodeDeliveryNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notifier.inbound.mq").Start(ctx, "CodeDeliveryNotification")
	defer span.End()

	// The body carries the raw passcode, so it is never logged here.
	body := msg.Body()
	slog.InfoContext(ctx, "consume: passcode delivery notification")

	var payload event.OTPCodeDeliveryMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of passcode delivery", "error", err)
		return nil
	}

	if err := h.uc.ConsumeCodeDelivery(ctx, usecase.ConsumeCodeDeliveryInput{
		Email:     payload.Email,
		UserClass: payload.UserClass,
		Code:      payload.Code,
		ExpiresAt: payload.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume passcode delivery", "email", payload.Email, "error", err)
		return err
	}

	return nil
}
