package inbound

import (
	"context"

	"github.com/tradepass/otpcore/internal/notifier/usecase"
)

type uc interface {
	ConsumeCodeDelivery(ctx context.Context, in usecase.ConsumeCodeDeliveryInput) error
}
