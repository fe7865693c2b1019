package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		name       string
		page, size int
		from, want int
	}{
		{"defaults", 0, 0, 0, DefaultPageSize},
		{"first page", 1, 20, 0, 20},
		{"third page", 3, 20, 40, 20},
		{"negative page clamped", -5, 10, 0, 10},
		{"oversized page clamped", 2, 500, DefaultPageSize, DefaultPageSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, size := Calculate(tc.page, tc.size)
			require.Equal(t, tc.from, from)
			require.Equal(t, tc.want, size)
		})
	}
}
