package util

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+91 98765 43210", "919876543210"},
		{"91-9876-543-210", "919876543210"},
		{"(0484) 123.4567", "04841234567"},
		{"  6281234567890 ", "6281234567890"},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizePhoneRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12345", "+1 (234) 56", "98765x43210", "1234567890123456"} {
		_, err := NormalizePhone(in)
		assert.ErrorIs(t, err, ErrInvalidPhone, in)
	}
}

func TestNewOrderNumber(t *testing.T) {
	at := time.Date(2024, 1, 31, 15, 4, 5, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-20240131-[0-9A-F]{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := NewOrderNumber(at)
		assert.Regexp(t, pattern, n)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1, "suffix should vary")
}

