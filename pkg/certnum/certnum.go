// Copyright (c) 2026 Certrix. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package certnum generates human-quotable certificate numbers.
//
// # Format
//
// A certificate number is exactly 10 ASCII decimal digits and never starts
// with '0', so it survives spreadsheet round-trips and phone dictation
// without losing a digit. The backend accepts caller-supplied numbers; this
// generator is used whenever the operator leaves the field blank.
package certnum

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

// Length is the fixed number of digits in a generated certificate number.
const Length = 10

var pattern = regexp.MustCompile(`^[1-9][0-9]{9}$`)

// New returns a fresh 10-digit certificate number.
//
// The first digit is drawn uniformly from 1-9; the remaining nine digits are
// a single uniform value in [0, 999999999] zero-padded to width 9. Randomness
// comes from crypto/rand so concurrent generators do not correlate.
func New() string {
	first, err := rand.Int(rand.Reader, big.NewInt(9))
	if err != nil {
		// crypto/rand failing means the platform's entropy source is broken;
		// there is no meaningful fallback for an identifier generator.
		panic(fmt.Sprintf("certnum: entropy source unavailable: %v", err))
	}

	rest, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000))
	if err != nil {
		panic(fmt.Sprintf("certnum: entropy source unavailable: %v", err))
	}

	return fmt.Sprintf("%d%09d", first.Int64()+1, rest.Int64())
}

// Valid reports whether s is a well-formed certificate number.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
