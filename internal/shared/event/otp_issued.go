package event

const OTPIssuedDestination string = "otp_issued"

// OTPIssuedMessage is the audit record of a successful issuance.
// It never carries the raw code.
type OTPIssuedMessage struct {
	RecordID  int64  `json:"record_id"`
	Kind      string `json:"kind"`
	Email     string `json:"email"`
	UserClass string `json:"user_class"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}
