package mq

import (
	"context"
	"encoding/json"

	"github.com/tradepass/otpcore/internal/otp/usecase"
	"github.com/tradepass/otpcore/internal/pkg/instrument"
	"github.com/tradepass/otpcore/internal/pkg/messaging"
	"github.com/tradepass/otpcore/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, destination string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Messaging) PublishOTPIssued(ctx context.Context, msg usecase.OTPIssuedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPIssued")
	defer span.End()

	return m.publish(ctx, span, event.OTPIssuedDestination, event.OTPIssuedMessage{
		RecordID:  msg.RecordID,
		Kind:      msg.Kind.String(),
		Email:     msg.Email,
		UserClass: msg.UserClass.String(),
		ExpiresAt: msg.ExpiresAt.Unix(),
	})
}

func (m *Messaging) PublishOTPVerified(ctx context.Context, msg usecase.OTPVerifiedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPVerified")
	defer span.End()

	return m.publish(ctx, span, event.OTPVerifiedDestination, event.OTPVerifiedMessage{
		RecordID:      msg.RecordID,
		Kind:          msg.Kind.String(),
		Email:         msg.Email,
		UserClass:     msg.UserClass.String(),
		AccountID:     msg.Account.AccountID,
		DemoAccountID: msg.Account.DemoAccountID,
	})
}

func (m *Messaging) PublishOTPVerifyFailed(ctx context.Context, msg usecase.OTPVerifyFailedEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishOTPVerifyFailed")
	defer span.End()

	return m.publish(ctx, span, event.OTPVerifyFailedDestination, event.OTPVerifyFailedMessage{
		Email:     msg.Email,
		UserClass: msg.UserClass.String(),
		Reason:    msg.Reason.String(),
	})
}

func (m *Messaging) PublishCodeDelivery(ctx context.Context, msg usecase.CodeDeliveryEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishCodeDelivery")
	defer span.End()

	return m.publish(ctx, span, event.OTPCodeDeliveryDestination, event.OTPCodeDeliveryMessage{
		Email:     msg.Email,
		UserClass: msg.UserClass.String(),
		Code:      msg.Code,
		ExpiresAt: msg.ExpiresAt.Unix(),
	})
}
