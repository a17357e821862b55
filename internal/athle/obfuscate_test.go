package athle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObfuscateLegacyID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"1234", "5049495048514752"},
		{"ABCD", "3465336632673168"},
		{"7", "4455"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ObfuscateLegacyID(tc.raw), "raw %q", tc.raw)
	}
}
