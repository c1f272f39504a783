package event

const OTPCodeDeliveryDestination string = "otp_code_delivery"
const OTPCodeDeliveryConsumerNotifier string = "otp_code_delivery_notifier"

// OTPCodeDeliveryMessage carries the raw code to the delivery gateway.
// This is the only place the code crosses a process boundary besides the
// recipient's mailbox; keep the topic out of log sinks.
type OTPCodeDeliveryMessage struct {
	Email     string `json:"email"`
	UserClass string `json:"user_class"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}
