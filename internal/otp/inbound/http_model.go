package inbound

import "time"

type RequestOTPRequest struct {
	Email     string `json:"email"`
	UserClass string `json:"user_class"`
	// ForcedCode is honored only when the forced-code override is enabled.
	ForcedCode string `json:"forced_code,omitempty"`
}

type RequestOTPResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func (RequestOTPResponse) Message() string {
	return "If the email can receive a code, we have sent one."
}

type VerifyOTPRequest struct {
	Email     string `json:"email"`
	UserClass string `json:"user_class"`
	Code      string `json:"code"`
}

type VerifyOTPResponse struct {
	Kind          string `json:"kind"`
	AccountID     *int64 `json:"account_id,omitempty"`
	DemoAccountID *int64 `json:"demo_account_id,omitempty"`
}

func (VerifyOTPResponse) Message() string {
	return "Code verified."
}
