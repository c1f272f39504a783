package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumeric_Lengths(t *testing.T) {
	for _, length := range []int{4, 6, 8, 10} {
		gen := NewNumeric(length)
		for i := 0; i < 20; i++ {
			code, err := gen.Generate()
			require.NoError(t, err)
			require.Len(t, code, length)
			for _, r := range code {
				require.GreaterOrEqual(t, r, '0')
				require.LessOrEqual(t, r, '9')
			}
		}
	}
}

func TestNumeric_FallbackLength(t *testing.T) {
	for _, length := range []int{0, 3, 11, -1} {
		code, err := NewNumeric(length).Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
	}
}

func TestNumeric_Varies(t *testing.T) {
	gen := NewNumeric(8)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 50 draws from 10^8 values should essentially never collide into one
	require.Greater(t, len(seen), 1)
}
