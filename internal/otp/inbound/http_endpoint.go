package inbound

import (
	"time"

	"github.com/tradepass/otpcore/internal/otp/usecase"
	"github.com/tradepass/otpcore/internal/pkg/config"
	"github.com/tradepass/otpcore/internal/pkg/router"
)

// HeaderIdempotencyKey deduplicates retried issue requests.
const HeaderIdempotencyKey = "X-Idempotency-Key"

// HTTPEndpoint exposes HTTP handlers for the OTP lifecycle.
type HTTPEndpoint struct {
	uc  uc
	cfg config.Config
}

// Request issues a fresh one-time code for the (email, user class) scope and
// queues it for email delivery. The code itself never appears in the
// response; only the expiry does.
func (h *HTTPEndpoint) Request(r *router.Request) (any, error) {
	var req RequestOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ttl := h.cfg.GetSecond("modules.otp.ttl_seconds")
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Email:          req.Email,
		UserClass:      req.UserClass,
		TTL:            ttl,
		ForcedCode:     req.ForcedCode,
		IdempotencyKey: r.Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return RequestOTPResponse{ExpiresAt: resp.ExpiresAt}, nil
}

// Verify checks a submitted code. Any mismatch, expiry, replay, or unknown
// scope collapses into one 401 response.
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Email:     req.Email,
		UserClass: req.UserClass,
		Code:      req.Code,
	})
	if err != nil {
		return nil, err
	}

	out := VerifyOTPResponse{Kind: resp.Kind.String()}
	if resp.Account.AccountID != nil {
		out.AccountID = resp.Account.AccountID
	}
	if resp.Account.DemoAccountID != nil {
		out.DemoAccountID = resp.Account.DemoAccountID
	}

	return out, nil
}
