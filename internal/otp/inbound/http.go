package inbound

import (
	"context"

	"github.com/tradepass/otpcore/internal/otp/usecase"
	"github.com/tradepass/otpcore/internal/pkg/config"
	"github.com/tradepass/otpcore/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Cleanup(ctx context.Context) (int64, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cfg config.Config) {
	end := &HTTPEndpoint{uc: uc, cfg: cfg}

	r.POST("/api/v1/otp/request", end.Request)
	r.POST("/api/v1/otp/verify", end.Verify)
}
