package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHMACSHA256_Deterministic(t *testing.T) {
	h := NewHMACSHA256("secret")

	a, err := h.Hash("123456")
	require.NoError(t, err)
	b, err := h.Hash("123456")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.NotEqual(t, "123456", string(a))
}

func TestHMACSHA256_Verify(t *testing.T) {
	h := NewHMACSHA256("secret")

	digest, err := h.Hash("123456")
	require.NoError(t, err)

	require.True(t, h.Verify(string(digest), "123456"))
	require.False(t, h.Verify(string(digest), "654321"))
}

func TestHMACSHA256_SecretMatters(t *testing.T) {
	a, err := NewHMACSHA256("secret-a").Hash("123456")
	require.NoError(t, err)
	b, err := NewHMACSHA256("secret-b").Hash("123456")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
