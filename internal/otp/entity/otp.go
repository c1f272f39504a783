package entity

import "time"

// AccountRef points at the account a KindAccount record belongs to.
// At most one of the two IDs is set; both nil means no account (KindSignup).
type AccountRef struct {
	AccountID     *int64
	DemoAccountID *int64
}

func (r AccountRef) IsZero() bool {
	return r.AccountID == nil && r.DemoAccountID == nil
}

// Record is one outstanding or historical one-time code. The code itself is
// stored only as an HMAC digest.
type Record struct {
	ID         int64
	Kind       Kind
	Email      string
	UserClass  UserClass
	CodeHash   string
	Account    AccountRef
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Verified   bool
	VerifiedAt *time.Time
}

// Usable reports whether the record can still win a verification at the
// given instant.
func (r Record) Usable(now time.Time) bool {
	return !r.Verified && now.Before(r.ExpiresAt)
}

// ResolutionState is the outcome of the signup identity resolver.
type ResolutionState int16

const (
	ResolutionUnknown ResolutionState = 0

	// ResolutionNoAccount means no account exists for the scope yet.
	ResolutionNoAccount ResolutionState = 1

	// ResolutionInactiveAccount means an account exists awaiting activation.
	ResolutionInactiveAccount ResolutionState = 2

	// ResolutionActiveAccount means the email is already registered and active.
	ResolutionActiveAccount ResolutionState = 3
)

// Resolution carries the resolver outcome plus the account reference when
// an account exists.
type Resolution struct {
	State   ResolutionState
	Account AccountRef
}
