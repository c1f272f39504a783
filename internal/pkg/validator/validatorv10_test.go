package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Email     string `validate:"required,email"`
	UserClass string `validate:"required,userclass"`
	Code      string `validate:"required,numericcode"`
}

func TestV10Validator_Valid(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	require.NoError(t, v.Validate(sample{
		Email:     "alice@example.com",
		UserClass: "live",
		Code:      "123456",
	}))
	require.NoError(t, v.Validate(sample{
		Email:     "bob@example.com",
		UserClass: "demo",
		Code:      "1234567890",
	}))
}

func TestV10Validator_UserClass(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	err = v.Validate(sample{Email: "a@b.co", UserClass: "staging", Code: "123456"})
	require.Error(t, err)

	var verr V10ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Values(), "user_class")
	require.Equal(t, "UserClass must be either live or demo", verr.Values()["user_class"])
}

func TestV10Validator_NumericCode(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	for _, code := range []string{"123", "12345678901", "12ab56", "12 456"} {
		err := v.Validate(sample{Email: "a@b.co", UserClass: "live", Code: code})
		require.Error(t, err, "code %q should be rejected", code)

		var verr V10ValidationError
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Values(), "code")
	}
}

func TestV10Validator_SnakeCaseKeys(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	err = v.Validate(sample{})
	require.Error(t, err)

	var verr V10ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Values(), "email")
	require.Contains(t, verr.Values(), "user_class")
	require.Contains(t, verr.Values(), "code")
}
