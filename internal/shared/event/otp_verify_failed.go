package event

const OTPVerifyFailedDestination string = "otp_verify_failed"

// OTPVerifyFailedMessage is the audit record of a rejected verification.
// Reason is visible only to the audit sink; callers always see a single
// undifferentiated invalid outcome.
type OTPVerifyFailedMessage struct {
	Email     string `json:"email"`
	UserClass string `json:"user_class"`
	Reason    string `json:"reason"` // not_issued | expired | already_used | code_mismatch
}
