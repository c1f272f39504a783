package entity

// Kind distinguishes pre-account signup codes from codes bound to an
// existing, not-yet-active account.
type Kind int16

const (
	KindUnknown Kind = 0

	// KindSignup is a code issued before any account exists.
	KindSignup Kind = 1

	// KindAccount is a code bound to an existing inactive account
	// (activation or password reset).
	KindAccount Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindSignup:
		return "signup"
	case KindAccount:
		return "account"
	default:
		return "unknown"
	}
}

// UserClass separates the live and demo account populations. The two
// classes never share OTP scopes or account tables.
type UserClass int16

const (
	UserClassUnknown UserClass = 0
	UserClassLive    UserClass = 1
	UserClassDemo    UserClass = 2
)

func (c UserClass) String() string {
	switch c {
	case UserClassLive:
		return "live"
	case UserClassDemo:
		return "demo"
	default:
		return "unknown"
	}
}

func (c UserClass) IsUnknown() bool {
	return c != UserClassLive && c != UserClassDemo
}

// UserClassFromString parses the wire representation ("live" | "demo").
func UserClassFromString(s string) UserClass {
	switch s {
	case "live":
		return UserClassLive
	case "demo":
		return UserClassDemo
	default:
		return UserClassUnknown
	}
}

// AccountStatus mirrors the accounts/demo_accounts status column.
type AccountStatus int16

const (
	AccountStatusUnknown  AccountStatus = 0
	AccountStatusInactive AccountStatus = 1
	AccountStatusActive   AccountStatus = 2
)

func (s AccountStatus) String() string {
	switch s {
	case AccountStatusInactive:
		return "Inactive"
	case AccountStatusActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// FailureReason classifies rejected verifications for the audit sink only;
// it is never returned to callers.
type FailureReason string

const (
	FailureNotIssued    FailureReason = "not_issued"
	FailureExpired      FailureReason = "expired"
	FailureAlreadyUsed  FailureReason = "already_used"
	FailureCodeMismatch FailureReason = "code_mismatch"
)

func (r FailureReason) String() string {
	return string(r)
}
