package event

const OTPVerifiedDestination string = "otp_verified"

// OTPVerifiedMessage is the audit record of a successful verification.
type OTPVerifiedMessage struct {
	RecordID      int64  `json:"record_id"`
	Kind          string `json:"kind"`
	Email         string `json:"email"`
	UserClass     string `json:"user_class"`
	AccountID     *int64 `json:"account_id,omitempty"`
	DemoAccountID *int64 `json:"demo_account_id,omitempty"`
}
