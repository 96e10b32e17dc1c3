// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package certnum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certrix/pkg/certnum"
)

/*
TestNew_Format verifies the generated-number invariants over many draws:
exactly 10 ASCII digits, never a leading zero.
*/
func TestNew_Format(t *testing.T) {
	for i := 0; i < 5000; i++ {
		number := certnum.New()

		require.Len(t, number, certnum.Length)
		assert.NotEqual(t, byte('0'), number[0], "number must not start with 0: %s", number)

		for pos := 0; pos < len(number); pos++ {
			assert.True(t, number[pos] >= '0' && number[pos] <= '9',
				"non-digit at position %d in %s", pos, number)
		}

		assert.True(t, certnum.Valid(number))
	}
}

/*
TestValid exercises the validation pattern against malformed inputs.
*/
func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "1234567890", true},
		{"all_nines", "9999999999", true},
		{"leading_zero", "0234567890", false},
		{"too_short", "123456789", false},
		{"too_long", "12345678901", false},
		{"letters", "12345A7890", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, certnum.Valid(tt.input))
		})
	}
}
